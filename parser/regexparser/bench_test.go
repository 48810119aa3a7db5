// Copyright © 2018 The ELPS authors

package regexparser_test

import (
	"path/filepath"
	"sort"
	"testing"

	"github.com/luthersystems/daniel/elpstest"
	"github.com/luthersystems/daniel/parser/regexparser"
)

const fixtureDir = "../../lisp/lisplib/stdlib"

func BenchmarkParser(b *testing.B) {
	files, err := filepath.Glob(filepath.Join(fixtureDir, "*.dan"))
	if err != nil {
		b.Fatalf("Failed to list test fixtures: %v", err)
	}
	sort.Strings(files) // should be redundant
	for _, path := range files {
		b.Run(filepath.Base(path), elpstest.BenchmarkParse(path, regexparser.NewReader))
	}
}
