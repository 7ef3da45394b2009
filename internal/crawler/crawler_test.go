package crawler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestCrawler_ScanProject(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.py", "print('hi')\n")
	writeFile(t, root, "src/app.js", "console.log(1);\n")
	writeFile(t, root, "legacy/payroll.cbl", "IDENTIFICATION DIVISION.\n")
	writeFile(t, root, "config.yaml", "debug: true\n")
	writeFile(t, root, "notes.xyz", "???\n")
	writeFile(t, root, ".env", "SECRET=1\n")
	writeFile(t, root, "node_modules/pkg/index.js", "x\n")
	writeFile(t, root, ".git/HEAD", "ref\n")
	writeFile(t, root, "__pycache__/main.pyc", "\x00")

	var found []FileInfo
	err := NewCrawler().ScanProject(root, func(fi FileInfo) {
		found = append(found, fi)
	})
	require.NoError(t, err)

	byPath := map[string]FileInfo{}
	for _, fi := range found {
		byPath[fi.Path] = fi
	}

	assert.Len(t, found, 5, "hidden files and ignored directories must be skipped")
	assert.Equal(t, "python", byPath["main.py"].Language)
	assert.Equal(t, "javascript", byPath["src/app.js"].Language)
	assert.Equal(t, "cobol", byPath["legacy/payroll.cbl"].Language)
	assert.Equal(t, "yaml", byPath["config.yaml"].Language)

	// Unrecognized files are still registered so the tree stays complete.
	assert.Equal(t, "unknown", byPath["notes.xyz"].Language)
	assert.Equal(t, int64(12), byPath["main.py"].Size)
}

func TestDetectLanguage(t *testing.T) {
	cases := map[string]string{
		"a/b/service.py": "python",
		"Main.java":      "java",
		"schema.sql":     "sql",
		"view.tsx":       "react",
		"report.dpr":     "delphi",
		"README.md":      "markdown",
		"mystery.zzz":    "unknown",
	}
	for path, want := range cases {
		assert.Equal(t, want, DetectLanguage(path), path)
	}
}
