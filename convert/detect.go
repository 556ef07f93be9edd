package convert

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// isArchiveFile reports whether file is a zip archive. Only files with zip
// extension are looked at.
func isArchiveFile(name string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(name), ".zip") {
		return false, nil
	}

	f, err := os.Open(name)
	if err != nil {
		return false, err
	}
	defer f.Close()

	// filetype needs at most this many bytes to match
	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	return filetype.Is(head[:n], "zip"), nil
}
