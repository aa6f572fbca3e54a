package palette

import (
	"fmt"
	"strings"
)

type Mode int

const (
	Grayscale Mode = iota
	Colored
)

func (m Mode) String() string {
	switch m {
	case Grayscale:
		return "Grayscale"
	case Colored:
		return "Colored"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func (m Mode) Toggle() Mode {
	if m == Colored {
		return Grayscale
	}
	return Colored
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "grayscale", "greyscale", "gray", "grey":
		return Grayscale, nil
	case "colored", "coloured", "color", "colour":
		return Colored, nil
	}
	return Grayscale, fmt.Errorf("unknown palette mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(m.String())), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
