package loader

import (
	"fmt"

	"go.uber.org/zap"

	"pscss/archive"
)

// Archive reads resources from entries of a zip bundle.
type Archive struct {
	log     *zap.Logger
	r       *archive.Reader
	charset string
}

// NewArchive opens zip archive, it has to be closed when conversions are done.
func NewArchive(log *zap.Logger, path, charsetLabel string) (*Archive, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r, err := archive.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open archive %s: %w", path, err)
	}
	return &Archive{log: log.Named("archive"), r: r, charset: charsetLabel}, nil
}

// Reader gives access to archive entries.
func (l *Archive) Reader() *archive.Reader {
	return l.r
}

func (l *Archive) Load(path string) (string, error) {
	data, err := l.r.ReadFile(path)
	if err != nil {
		return "", err
	}
	text, err := decode(data, l.charset)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	l.log.Debug("Loaded archive entry", zap.String("archive", l.r.Name()), zap.String("path", path), zap.Int("bytes", len(data)))
	return text, nil
}

func (l *Archive) Close() error {
	return l.r.Close()
}
