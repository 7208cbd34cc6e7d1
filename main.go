package main

import "github.com/nyxwolf/goecma/cmd"

func main() {
	if err := cmd.App().Execute(); err != nil {
		panic(err)
	}
}
