package app

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func populateTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("MkdirAll failed: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}
}

func baseNames(paths []string) []string {
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	sort.Strings(names)
	return names
}

func TestCollectPythonFilesRecursive(t *testing.T) {
	dir := t.TempDir()
	populateTree(t, dir, map[string]string{
		"main.py":          "x = 1\n",
		"pkg/module.py":    "y = 2\n",
		"pkg/legacy.pyw":   "z = 3\n",
		"pkg/notes.txt":    "not python\n",
		"scripts/setup.sh": "echo hi\n",
	})

	files, err := NewFileHelper().CollectPythonFiles([]string{dir}, true, nil, nil)
	if err != nil {
		t.Fatalf("CollectPythonFiles failed: %v", err)
	}

	got := baseNames(files)
	want := []string{"legacy.pyw", "main.py", "module.py"}
	if len(got) != len(want) {
		t.Fatalf("Collected %v, expected %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Collected %v, expected %v", got, want)
			break
		}
	}
}

func TestCollectPythonFilesNonRecursive(t *testing.T) {
	dir := t.TempDir()
	populateTree(t, dir, map[string]string{
		"top.py":        "x = 1\n",
		"pkg/nested.py": "y = 2\n",
	})

	files, err := NewFileHelper().CollectPythonFiles([]string{dir}, false, nil, nil)
	if err != nil {
		t.Fatalf("CollectPythonFiles failed: %v", err)
	}

	if len(files) != 1 || filepath.Base(files[0]) != "top.py" {
		t.Errorf("Expected only top.py, got %v", files)
	}
}

func TestCollectPythonFilesExcludesDirectories(t *testing.T) {
	dir := t.TempDir()
	populateTree(t, dir, map[string]string{
		"app.py":                         "x = 1\n",
		"venv/lib/vendored.py":           "v = 1\n",
		"__pycache__/app.cpython-312.py": "c = 1\n",
	})

	files, err := NewFileHelper().CollectPythonFiles(
		[]string{dir}, true, nil, []string{"venv", "__pycache__"})
	if err != nil {
		t.Fatalf("CollectPythonFiles failed: %v", err)
	}

	if len(files) != 1 || filepath.Base(files[0]) != "app.py" {
		t.Errorf("Expected only app.py, got %v", files)
	}
}

func TestCollectPythonFilesExcludesGlobs(t *testing.T) {
	dir := t.TempDir()
	populateTree(t, dir, map[string]string{
		"app.py":      "x = 1\n",
		"app_test.py": "t = 1\n",
	})

	files, err := NewFileHelper().CollectPythonFiles(
		[]string{dir}, true, nil, []string{"*_test.py"})
	if err != nil {
		t.Fatalf("CollectPythonFiles failed: %v", err)
	}

	if len(files) != 1 || filepath.Base(files[0]) != "app.py" {
		t.Errorf("Expected only app.py, got %v", files)
	}
}

func TestCollectPythonFilesRespectsGitignore(t *testing.T) {
	dir := t.TempDir()
	populateTree(t, dir, map[string]string{
		".gitignore":      "generated.py\nout/\n",
		"app.py":          "x = 1\n",
		"generated.py":    "g = 1\n",
		"out/artifact.py": "a = 1\n",
	})

	files, err := NewFileHelper().CollectPythonFiles([]string{dir}, true, nil, nil)
	if err != nil {
		t.Fatalf("CollectPythonFiles failed: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "app.py" {
		t.Errorf("Expected only app.py, got %v", files)
	}

	// Disabling gitignore handling restores the full set.
	all, err := NewFileHelperWithOptions(false).CollectPythonFiles([]string{dir}, true, nil, nil)
	if err != nil {
		t.Fatalf("CollectPythonFiles failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 files with gitignore disabled, got %v", all)
	}
}

func TestCollectPythonFilesMissingPath(t *testing.T) {
	_, err := NewFileHelper().CollectPythonFiles(
		[]string{filepath.Join(t.TempDir(), "missing")}, true, nil, nil)
	if err == nil {
		t.Fatal("Expected an error for a missing path")
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	populateTree(t, dir, map[string]string{"a.py": "x = 1\n"})

	h := NewFileHelper()

	exists, err := h.FileExists(filepath.Join(dir, "a.py"))
	if err != nil || !exists {
		t.Errorf("FileExists(a.py) = %v, %v, expected true", exists, err)
	}

	exists, err = h.FileExists(filepath.Join(dir, "missing.py"))
	if err != nil || exists {
		t.Errorf("FileExists(missing.py) = %v, %v, expected false", exists, err)
	}

	// Directories do not count as files.
	exists, err = h.FileExists(dir)
	if err != nil || exists {
		t.Errorf("FileExists(dir) = %v, %v, expected false", exists, err)
	}
}

func TestIsValidPythonFile(t *testing.T) {
	h := NewFileHelper()

	tests := []struct {
		path     string
		expected bool
	}{
		{"main.py", true},
		{"main.PY", true},
		{"legacy.pyw", true},
		{"script.sh", false},
		{"README.md", false},
		{"noext", false},
	}

	for _, tt := range tests {
		if got := h.IsValidPythonFile(tt.path); got != tt.expected {
			t.Errorf("IsValidPythonFile(%q) = %v, expected %v", tt.path, got, tt.expected)
		}
	}
}

func TestResolveFilePathsDirectFiles(t *testing.T) {
	dir := t.TempDir()
	populateTree(t, dir, map[string]string{"a.py": "x = 1\n", "b.py": "y = 2\n"})

	paths := []string{filepath.Join(dir, "a.py"), filepath.Join(dir, "b.py")}
	resolved, err := ResolveFilePaths(NewFileHelper(), paths, true, nil, nil)
	if err != nil {
		t.Fatalf("ResolveFilePaths failed: %v", err)
	}

	// Explicit file arguments pass through untouched.
	if len(resolved) != 2 || resolved[0] != paths[0] || resolved[1] != paths[1] {
		t.Errorf("Resolved %v, expected %v", resolved, paths)
	}
}

func TestResolveFilePathsDirectory(t *testing.T) {
	dir := t.TempDir()
	populateTree(t, dir, map[string]string{"a.py": "x = 1\n", "sub/b.py": "y = 2\n"})

	resolved, err := ResolveFilePaths(NewFileHelper(), []string{dir}, true, nil, nil)
	if err != nil {
		t.Fatalf("ResolveFilePaths failed: %v", err)
	}
	if len(resolved) != 2 {
		t.Errorf("Expected 2 files, got %v", resolved)
	}
}
