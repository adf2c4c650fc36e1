package domain_test

import (
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modulePath = "github.com/skyframe-dev/xplm-sdk"

// TestDomainHasNoExternalDependencies verifies that the domain layer only
// imports the standard library and other domain packages. Every other
// package in the module builds on the domain, never the other way round.
func TestDomainHasNoExternalDependencies(t *testing.T) {
	fset := token.NewFileSet()

	checked := 0
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		checkFileImports(t, fset, path)
		checked++
		return nil
	})
	require.NoError(t, err)
	assert.Positive(t, checked, "no domain files found")
}

func checkFileImports(t *testing.T, fset *token.FileSet, filename string) {
	t.Helper()

	f, err := parser.ParseFile(fset, filename, nil, parser.ImportsOnly)
	require.NoError(t, err, "failed to parse %s", filename)

	for _, imp := range f.Imports {
		importPath := strings.Trim(imp.Path.Value, `"`)

		if strings.HasPrefix(importPath, modulePath+"/") {
			assert.True(t, strings.HasPrefix(importPath, modulePath+"/domain/"),
				"%s must not import %s (domain depends on nothing above it)", filename, importPath)
			continue
		}

		// Third-party imports have a dot in their first path element.
		first, _, _ := strings.Cut(importPath, "/")
		assert.NotContains(t, first, ".",
			"%s must not import third-party package %s", filename, importPath)
	}
}
