// Package loader implements resource loading for style sheet imports: local
// files, zip bundles and remote URLs, with optional in-memory cache.
package loader

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"pscss/preprocess"
)

const defaultCharset = "utf-8"

var (
	_ preprocess.Loader = (*File)(nil)
	_ preprocess.Loader = (*HTTP)(nil)
	_ preprocess.Loader = (*Archive)(nil)
	_ preprocess.Loader = (*Cached)(nil)
	_ preprocess.Loader = (*Mux)(nil)
)

// IsURL reports whether path has to be fetched over network.
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// decode converts data in named character set to UTF-8 string. UTF-8 byte
// order mark is dropped.
func decode(data []byte, label string) (string, error) {
	if label == "" || strings.EqualFold(label, defaultCharset) {
		return string(bytes.TrimPrefix(data, []byte("\uFEFF"))), nil
	}
	r, err := charset.NewReaderLabel(label, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("unable to decode from %s: %w", label, err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("unable to decode from %s: %w", label, err)
	}
	return string(out), nil
}
