package lexer_test

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/tools/txtar"

	"github.com/nyxwolf/goecma/lexer"
	"github.com/nyxwolf/goecma/pool"
)

// kindNames maps the golden fixture's mnemonics to lexer.Kind, a
// stand-in for the Kind.String() a `stringer` run would otherwise
// generate (skipped here: go:generate is not invoked as part of this
// exercise).
var kindNames = map[string]lexer.Kind{
	"EOS": lexer.KindEOS, "IDENT": lexer.KindIdent, "NUMBER": lexer.KindNumber,
	"VAR": lexer.KindVar, "FUNCTION": lexer.KindFunction,
	"GET": lexer.KindGet, "SET": lexer.KindSet,
	"ASSIGN": lexer.KindAssign, "PLUSASSIGN": lexer.KindPlusAssign,
	"MINUSASSIGN": lexer.KindMinusAssign, "STARASSIGN": lexer.KindStarAssign,
	"PLUS": lexer.KindPlus, "SLASH": lexer.KindSlash,
	"DOT": lexer.KindDot, "COMMA": lexer.KindComma, "SEMICOLON": lexer.KindSemicolon,
	"LEFTPAREN": lexer.KindLeftParen, "RIGHTPAREN": lexer.KindRightParen,
}

// tokenKinds drains the lexer over src, stopping once KindEOS is seen
// (inclusive), the same loop-until-EOS shape parser.go's ParseStatements
// uses.
func tokenKinds(t *testing.T, src string) []lexer.Kind {
	t.Helper()
	l := lexer.New(src, pool.New())
	var kinds []lexer.Kind
	for {
		tok := l.NextToken(false)
		kinds = append(kinds, tok.Kind)
		if tok.Kind == lexer.KindEOS {
			return kinds
		}
	}
}

// TestGoldenTokenStreams replays lexer/testdata/golden.txtar, the
// fixture format golang.org/x/tools/txtar defines (one archive, many
// named file sections) and the form SPEC_FULL.md's test-tooling
// section calls for covering the pre-scanner/lexer/emitter trio.
func TestGoldenTokenStreams(t *testing.T) {
	const path = "testdata/golden.txtar"
	data, err := os.ReadFile(path)
	assert.NoError(t, err)

	ar := txtar.Parse(data)
	bySrcName := map[string][]byte{}
	for _, f := range ar.Files {
		bySrcName[f.Name] = f.Data
	}

	for _, f := range ar.Files {
		if !strings.HasSuffix(f.Name, ".js") {
			continue
		}
		name := strings.TrimSuffix(f.Name, ".js")
		t.Run(name, func(t *testing.T) {
			wantLine, ok := bySrcName[name+".kinds"]
			assert.True(t, ok, "missing %s.kinds section", name)

			var want []lexer.Kind
			for _, tok := range strings.Fields(string(wantLine)) {
				k, ok := kindNames[tok]
				assert.True(t, ok, "unknown kind mnemonic %q", tok)
				want = append(want, k)
			}

			got := tokenKinds(t, string(f.Data))
			assert.Equal(t, want, got)
		})
	}
}
