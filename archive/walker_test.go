package archive

import (
	"archive/zip"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type zipEntry struct {
	name    string
	content string
}

func createZip(t *testing.T, entries []zipEntry) string {
	t.Helper()

	zipPath := filepath.Join(t.TempDir(), "test.zip")
	zipFile, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer zipFile.Close()

	w := zip.NewWriter(zipFile)
	for _, e := range entries {
		if e.name[len(e.name)-1] == '/' {
			hdr := &zip.FileHeader{Name: e.name}
			hdr.SetMode(os.ModeDir | 0755)
			if _, err := w.CreateHeader(hdr); err != nil {
				t.Fatalf("Failed to create directory %s in zip: %v", e.name, err)
			}
			continue
		}
		fw, err := w.Create(e.name)
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", e.name, err)
		}
		if _, err := fw.Write([]byte(e.content)); err != nil {
			t.Fatalf("Failed to write content for %s: %v", e.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip writer: %v", err)
	}
	return zipPath
}

func TestWalk(t *testing.T) {
	zipPath := createZip(t, []zipEntry{
		{"theme/", ""},
		{"theme/s10.pscss", "a{}"},
		{"theme/s2.pscss", "b{}"},
		{"theme/_vars.pscss", "$c: red;"},
		{"other/x.css", "x{}"},
	})

	tests := []struct {
		name   string
		prefix string
		want   []string
	}{
		{name: "prefix in natural order", prefix: "theme/", want: []string{"theme/_vars.pscss", "theme/s2.pscss", "theme/s10.pscss"}},
		{name: "no match", prefix: "nonexistent/"},
		{name: "everything", prefix: "", want: []string{"other/x.css", "theme/_vars.pscss", "theme/s2.pscss", "theme/s10.pscss"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var visited []string
			err := Walk(zipPath, tt.prefix, func(archive string, file *zip.File) error {
				if archive != zipPath {
					t.Errorf("archive = %s, want %s", archive, zipPath)
				}
				visited = append(visited, file.Name)
				return nil
			})
			if err != nil {
				t.Fatalf("Walk() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, visited); diff != "" {
				t.Errorf("visited mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWalk_EarlyTermination(t *testing.T) {
	zipPath := createZip(t, []zipEntry{{"a.pscss", ""}, {"b.pscss", ""}, {"c.pscss", ""}})

	var visited int
	stopErr := errors.New("stop walking")
	err := Walk(zipPath, "", func(archive string, file *zip.File) error {
		visited++
		if visited == 2 {
			return stopErr
		}
		return nil
	})

	if !errors.Is(err, stopErr) {
		t.Errorf("Walk() error = %v, want %v", err, stopErr)
	}
	if visited != 2 {
		t.Errorf("visited %d files, want 2 (early termination)", visited)
	}
}

func TestWalk_InvalidArchive(t *testing.T) {
	t.Run("nonexistent file", func(t *testing.T) {
		if err := Walk("/nonexistent/file.zip", "", nil); err == nil {
			t.Error("Expected error for nonexistent file")
		}
	})

	t.Run("invalid zip file", func(t *testing.T) {
		invalidZip := filepath.Join(t.TempDir(), "invalid.zip")
		if err := os.WriteFile(invalidZip, []byte("not a zip file"), 0644); err != nil {
			t.Fatalf("Failed to create invalid zip: %v", err)
		}
		if err := Walk(invalidZip, "", nil); err == nil {
			t.Error("Expected error for invalid zip file")
		}
	})

	t.Run("path traversal", func(t *testing.T) {
		zipPath := createZip(t, []zipEntry{{"ok.pscss", ""}, {"../evil.pscss", ""}})
		if _, err := Open(zipPath); err == nil {
			t.Error("Expected error for unsafe entry")
		}
	})
}

func TestReader_ReadFile(t *testing.T) {
	zipPath := createZip(t, []zipEntry{
		{"css/main.pscss", "@import '_vars.pscss';"},
		{"css/vars.pscss", "$c: red;"},
	})

	r, err := Open(zipPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()

	if r.Name() != zipPath {
		t.Errorf("Name() = %s, want %s", r.Name(), zipPath)
	}
	for _, name := range []string{"css/vars.pscss", "/css/vars.pscss", "css/./vars.pscss"} {
		data, err := r.ReadFile(name)
		if err != nil {
			t.Errorf("ReadFile(%q) error = %v", name, err)
			continue
		}
		if string(data) != "$c: red;" {
			t.Errorf("ReadFile(%q) = %q", name, data)
		}
	}

	if _, err := r.ReadFile("css/missing.pscss"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile() error = %v, want fs.ErrNotExist", err)
	}
	if diff := cmp.Diff([]string{"css/main.pscss", "css/vars.pscss"}, r.Names("css/")); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestIsSafePath(t *testing.T) {
	tests := map[string]bool{
		"a/b.pscss":     true,
		"a/..b/c.pscss": true,
		"/a.pscss":      false,
		`\a.pscss`:      false,
		"a/../../b.css": false,
		"..":            false,
	}
	for name, want := range tests {
		if got := isSafePath(name); got != want {
			t.Errorf("isSafePath(%q) = %v, want %v", name, got, want)
		}
	}
}
