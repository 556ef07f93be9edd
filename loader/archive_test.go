package loader

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestArchive_Load(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "theme.zip")
	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	w := zip.NewWriter(f)
	for name, content := range map[string]string{
		"theme/main.pscss": "@import '_vars.pscss';",
		"theme/vars.pscss": "$c: red;",
	} {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create %s: %v", name, err)
		}
		fw.Write([]byte(content))
	}
	w.Close()
	f.Close()

	l, err := NewArchive(zap.NewNop(), zipPath, "")
	if err != nil {
		t.Fatalf("NewArchive() error = %v", err)
	}
	defer l.Close()

	got, err := l.Load("theme/vars.pscss")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != "$c: red;" {
		t.Errorf("Load() = %q", got)
	}
	if _, err := l.Load("theme/missing.pscss"); err == nil {
		t.Error("Expected error for missing entry")
	}
	if len(l.Reader().Names("theme/")) != 2 {
		t.Errorf("Names() = %v", l.Reader().Names("theme/"))
	}

	if _, err := NewArchive(nil, filepath.Join(t.TempDir(), "none.zip"), ""); err == nil {
		t.Error("Expected error for missing archive")
	}
}
