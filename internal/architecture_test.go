package internal_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestWorldImportRestrictions keeps the world model free of everything above it
func TestWorldImportRestrictions(t *testing.T) {
	allowedPrefixes := []string{
		"traderoute/internal/log",
	}
	checkImports(t, "./world", allowedPrefixes, nil)
}

// TestRoutesImportRestrictions keeps the generator independent of storage and output
func TestRoutesImportRestrictions(t *testing.T) {
	allowedPrefixes := []string{
		"traderoute/internal/world",
		"traderoute/internal/log",
	}
	checkImports(t, "./routes", allowedPrefixes, nil)
}

// TestOutputImportRestrictions ensures report and render only consume results
func TestOutputImportRestrictions(t *testing.T) {
	forbiddenPrefixes := []string{
		"traderoute/internal/database",
		"traderoute/internal/config",
	}
	checkImports(t, "./report", nil, forbiddenPrefixes)
	checkImports(t, "./render", nil, forbiddenPrefixes)
}

// TestDatabaseImportRestrictions ensures storage does not depend on presentation
func TestDatabaseImportRestrictions(t *testing.T) {
	forbiddenPrefixes := []string{
		"traderoute/internal/report",
		"traderoute/internal/render",
		"traderoute/internal/config",
	}
	checkImports(t, "./database", nil, forbiddenPrefixes)
}

func checkImports(t *testing.T, packageDir string, allowedPrefixes, forbiddenPrefixes []string) {
	err := filepath.Walk(packageDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		fset := token.NewFileSet()
		node, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			t.Errorf("Failed to parse %s: %v", path, err)
			return nil
		}

		for _, imp := range node.Imports {
			importPath := strings.Trim(imp.Path.Value, `"`)

			// Only module-internal imports are restricted
			if !strings.HasPrefix(importPath, "traderoute/internal") {
				continue
			}

			for _, forbidden := range forbiddenPrefixes {
				if strings.HasPrefix(importPath, forbidden) {
					t.Errorf("FORBIDDEN import in %s: %s", path, importPath)
				}
			}

			if allowedPrefixes == nil {
				continue
			}
			allowed := false
			for _, prefix := range allowedPrefixes {
				if strings.HasPrefix(importPath, prefix) {
					allowed = true
					break
				}
			}
			if !allowed {
				t.Errorf("DISALLOWED import in %s: %s (not in allowed list)", path, importPath)
			}
		}

		return nil
	})

	if err != nil {
		t.Errorf("Failed to walk directory %s: %v", packageDir, err)
	}
}
