package cgen_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/arafura-lang/arafura/internal/cgen"
	"github.com/arafura-lang/arafura/internal/parser"
)

// TestGoldenFiles translates each testdata/*.py fixture and compares the
// output against its checked-in .c counterpart.
func TestGoldenFiles(t *testing.T) {
	sources, err := filepath.Glob(filepath.Join("testdata", "*.py"))
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) == 0 {
		t.Fatal("no golden fixtures found under testdata")
	}

	for _, src := range sources {
		name := strings.TrimSuffix(filepath.Base(src), ".py")
		t.Run(name, func(t *testing.T) {
			input, err := os.ReadFile(src)
			if err != nil {
				t.Fatal(err)
			}
			want, err := os.ReadFile(filepath.Join("testdata", name+".c"))
			if err != nil {
				t.Fatal(err)
			}

			p := parser.New(string(input), parser.WithFilename(src))
			module := p.ParseModule()
			if p.Failed() {
				t.Fatalf("parse failed: %v", p.Errors())
			}
			got, err := cgen.Translate(module)
			if err != nil {
				t.Fatalf("translate failed: %v", err)
			}
			if diff := cmp.Diff(string(want), got); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
