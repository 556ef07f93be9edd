package config

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func readArchive(t *testing.T, name string) map[string]string {
	t.Helper()

	zr, err := zip.OpenReader(name)
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer zr.Close()

	files := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("unable to open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("unable to read %s: %v", f.Name, err)
		}
		files[f.Name] = string(data)
	}
	return files
}

func TestReport_Archive(t *testing.T) {
	dir := t.TempDir()
	conf := ReporterConfig{Destination: filepath.Join(dir, "report.zip")}

	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	stored := filepath.Join(dir, "final.log")
	if err := os.WriteFile(stored, []byte("log line\n"), 0644); err != nil {
		t.Fatalf("Failed to write log file: %v", err)
	}
	r.Store("final.log", stored)
	r.Store("absent.log", filepath.Join(dir, "absent.log"))
	r.StoreData("sources/a.pscss", []byte("a { b { x: 1; } }"))
	r.StoreData("sources/a.pscss", []byte("again"))

	if r.Name() != conf.Destination {
		t.Errorf("Name() = %q, want %q", r.Name(), conf.Destination)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	files := readArchive(t, conf.Destination)
	if files["final.log"] != "log line\n" {
		t.Errorf("final.log = %q", files["final.log"])
	}
	if files["sources/a.pscss"] != "a { b { x: 1; } }" {
		t.Errorf("sources/a.pscss = %q", files["sources/a.pscss"])
	}
	if _, ok := files["absent.log"]; ok {
		t.Error("absent file must not be archived")
	}

	var versioned int
	for name := range files {
		if strings.HasPrefix(name, "sources/a.pscss-") {
			versioned++
		}
	}
	if versioned != 1 {
		t.Errorf("expected one versioned entry, got %d", versioned)
	}
	if !strings.Contains(files["MANIFEST"], "final.log") || !strings.Contains(files["MANIFEST"], "<data 17 bytes>") {
		t.Errorf("unexpected MANIFEST:\n%s", files["MANIFEST"])
	}
}

func TestReport_Concurrent(t *testing.T) {
	dir := t.TempDir()
	conf := ReporterConfig{Destination: filepath.Join(dir, "report.zip")}
	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.StoreData(fmt.Sprintf("out/%d.css", i), []byte("x"))
		}()
	}
	wg.Wait()

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if files := readArchive(t, conf.Destination); len(files) != 21 {
		t.Errorf("expected 20 entries and manifest, got %d", len(files))
	}
}

func TestReport_StoreConflict(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.Store("log", "a.log")
	r.Store("log", "a.log")

	defer func() {
		if recover() == nil {
			t.Error("Expected panic when overwriting stored file")
		}
	}()
	r.Store("log", "b.log")
}

func TestReportClose_NilReport(t *testing.T) {
	var r *Report
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
	r.Store("x", "y")
	r.StoreData("x", nil)
	if r.Name() != "" {
		t.Error("Name() of nil report should be empty")
	}
}

func TestReportClose_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}
