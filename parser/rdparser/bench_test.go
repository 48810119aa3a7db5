// Copyright © 2018 The ELPS authors

package rdparser_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/luthersystems/daniel/parser/rdparser"
	"github.com/luthersystems/daniel/parser/token"
)

func benchmarkSource(n int) []byte {
	var buf bytes.Buffer
	for i := 0; i < n; i++ {
		fmt.Fprintf(&buf, "(define (f%d x & rest)\n  \"doc\"\n  (let ((y {:a %d :b [1 2 3]}))\n    (+ x y.a (first rest))))\n", i, i)
		fmt.Fprintf(&buf, "(class C%d :extends Object (new a b) (sum () (+ this.a this.b)))\n", i)
	}
	return buf.Bytes()
}

func BenchmarkParser(b *testing.B) {
	for _, n := range []int{1, 10, 100} {
		src := benchmarkSource(n)
		b.Run(fmt.Sprintf("forms=%d", 2*n), func(b *testing.B) {
			b.SetBytes(int64(len(src)))
			for i := 0; i < b.N; i++ {
				p := rdparser.New(token.NewScanner("bench", bytes.NewReader(src)))
				exprs, err := p.ParseProgram()
				if err != nil {
					b.Fatalf("Parse failure: %v", err)
				}
				if len(exprs) != 2*n {
					b.Fatalf("Parsed %d expressions", len(exprs))
				}
			}
		})
	}
}
