package loader

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"
)

// File reads resources from local file system. Resource paths are relative
// to Root and cannot escape it.
type File struct {
	log     *zap.Logger
	root    string
	charset string
}

// NewFile creates file loader. Sources are decoded from charsetLabel, empty
// label means UTF-8.
func NewFile(log *zap.Logger, root, charsetLabel string) *File {
	if log == nil {
		log = zap.NewNop()
	}
	return &File{log: log.Named("file"), root: root, charset: charsetLabel}
}

// Root returns directory all resource paths are relative to.
func (l *File) Root() string {
	return l.root
}

func (l *File) Load(p string) (string, error) {
	name := filepath.Join(l.root, filepath.FromSlash(path.Clean("/"+p)))
	data, err := os.ReadFile(name)
	if err != nil {
		return "", err
	}
	text, err := decode(data, l.charset)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	l.log.Debug("Loaded file", zap.String("path", name), zap.Int("bytes", len(data)))
	return text, nil
}
