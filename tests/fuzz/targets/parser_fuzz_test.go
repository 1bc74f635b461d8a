package targets

import (
	"errors"
	"testing"

	"github.com/funvibe/tapevm/internal/parser"
)

// FuzzParser feeds raw text to the s-expression parser. Every input must
// either parse or fail with ErrSyntax; a parsed tree must print back to text
// that parses to the same tree.
func FuzzParser(f *testing.F) {
	f.Add("(lit 1)")
	f.Add("(add (arg 0) (lit -1) (local 0))")
	f.Add("(bind (lit 0) (seq (loop (local 0) (assign 0 (lit 0))) (local 0)))")
	f.Add("((((")
	f.Add("(assign 99999999999999999999 (lit 1))")
	addSourceCorpus(f, "../../testdata", "../../../internal/bench/testdata")

	f.Fuzz(func(t *testing.T, src string) {
		if len(src) > 4000 {
			return
		}
		expr, err := parser.Parse(src, "")
		if err != nil {
			if !errors.Is(err, parser.ErrSyntax) {
				t.Fatalf("error does not wrap ErrSyntax: %v", err)
			}
			return
		}

		text := expr.String()
		back, err := parser.Parse(text, "")
		if err != nil {
			t.Fatalf("printed tree does not parse: %v\n%s", err, text)
		}
		if back.String() != text {
			t.Fatalf("tree changed after reprinting:\n%s\n%s", text, back.String())
		}
	})
}
