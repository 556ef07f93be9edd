package config

import (
	"fmt"
	"strings"
)

// CheckMode specifies what to do with produced CSS.
type CheckMode int

const (
	CheckModeNone CheckMode = iota
	CheckModeWarn
	CheckModeStrict
)

var checkModeNames = []string{"none", "warn", "strict"}

func (m CheckMode) String() string {
	if m < 0 || int(m) >= len(checkModeNames) {
		return fmt.Sprintf("CheckMode(%d)", int(m))
	}
	return checkModeNames[m]
}

// CheckModeNames returns names of all known modes.
func CheckModeNames() []string {
	return append([]string(nil), checkModeNames...)
}

func ParseCheckMode(name string) (CheckMode, error) {
	for i, n := range checkModeNames {
		if strings.EqualFold(n, name) {
			return CheckMode(i), nil
		}
	}
	return CheckModeNone, fmt.Errorf("%q is not a valid CheckMode, try [%s]", name, strings.Join(checkModeNames, ", "))
}

// Enabled reports whether produced CSS has to be checked at all.
func (m CheckMode) Enabled() bool {
	return m != CheckModeNone
}

func (m CheckMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *CheckMode) UnmarshalText(text []byte) error {
	v, err := ParseCheckMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
