package controllers

import (
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"strings"
	"testing"
)

// Every handler carries the swag annotations the docs generator reads.
func TestHandlersAreAnnotated(t *testing.T) {
	fset := token.NewFileSet()
	pkgs, err := parser.ParseDir(fset, ".", func(fi fs.FileInfo) bool {
		return !strings.HasSuffix(fi.Name(), "_test.go")
	}, parser.ParseComments)
	if err != nil {
		t.Fatalf("parse package: %v", err)
	}

	handlers := 0
	for _, pkg := range pkgs {
		for _, file := range pkg.Files {
			for _, decl := range file.Decls {
				fn, ok := decl.(*ast.FuncDecl)
				if !ok || fn.Recv == nil || !fn.Name.IsExported() {
					continue
				}
				handlers++
				doc := fn.Doc.Text()
				for _, tag := range []string{"@Summary", "@Tags", "@Produce", "@Success", "@Router"} {
					if !strings.Contains(doc, tag) {
						t.Errorf("%s is missing %s", fn.Name.Name, tag)
					}
				}
			}
		}
	}
	if handlers != 19 {
		t.Fatalf("found %d handlers, want 19", handlers)
	}
}
