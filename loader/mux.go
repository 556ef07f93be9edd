package loader

import (
	"pscss/preprocess"
)

// Mux sends URLs to Remote and everything else to Local.
type Mux struct {
	Local  preprocess.Loader
	Remote preprocess.Loader // nil disables remote resources
}

func (m *Mux) Load(path string) (string, error) {
	if IsURL(path) {
		if m.Remote == nil {
			return "", ErrRemoteDisabled
		}
		return m.Remote.Load(path)
	}
	if m.Local == nil {
		return "", preprocess.ErrNoLoader
	}
	return m.Local.Load(path)
}
