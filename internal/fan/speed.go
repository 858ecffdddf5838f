package fan

import (
	"strconv"
	"strings"

	"codeberg.org/mutker/tpfanctl/internal/errors"
)

// Mode distinguishes a numeric level from the named fan modes.
type Mode uint8

const (
	ModeLevel Mode = iota
	ModeFullSpeed
	ModeDisengaged
	ModeAuto
)

const (
	// MinLevel and MaxLevel bound a numeric level. thinkpad_acpi accepts
	// level 0 (fan off), which is also what the help text advertises.
	MinLevel = 0
	MaxLevel = 7

	// maxToken is the largest number a speed token can carry before it is
	// reported as too high rather than invalid.
	maxToken = 255

	validSpeeds = "Valid fan speeds range from 0-7, auto, full-speed and disengaged"
)

// Speed is a requested or current fan state.
type Speed struct {
	mode  Mode
	level uint8
}

var (
	Auto       = Speed{mode: ModeAuto}
	FullSpeed  = Speed{mode: ModeFullSpeed}
	Disengaged = Speed{mode: ModeDisengaged}
)

// NewLevel returns a numeric level speed
func NewLevel(n uint8) (Speed, error) {
	if n > MaxLevel {
		return Speed{}, invalidSpeed(strconv.Itoa(int(n)))
	}

	return Speed{mode: ModeLevel, level: n}, nil
}

// Parse turns a command-line or control-file token into a Speed.
func Parse(text string) (Speed, error) {
	errFactory := errors.New()

	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			if strings.HasPrefix(text, "-") {
				return Speed{}, errFactory.WithHelp(errors.ErrValueTooLow, validSpeeds, text+" is negative")
			}
			return Speed{}, errFactory.WithHelp(errors.ErrValueTooHigh, validSpeeds, "Fan speed "+text+" is too high")
		}

		switch text {
		case "disengaged":
			return Disengaged, nil
		case "auto":
			return Auto, nil
		case "full-speed":
			return FullSpeed, nil
		}

		return Speed{}, invalidSpeed(text)
	}

	switch {
	case n < 0:
		return Speed{}, errFactory.WithHelp(errors.ErrValueTooLow, validSpeeds, text+" is negative")
	case n > maxToken:
		return Speed{}, errFactory.WithHelp(errors.ErrValueTooHigh, validSpeeds, "Fan speed "+text+" is too high")
	}

	return NewLevel(uint8(n))
}

func invalidSpeed(text string) error {
	return errors.New().WithHelp(errors.ErrInvalidValue, validSpeeds, text+" is an invalid fan speed setting")
}

// Mode returns the speed's variant
func (s Speed) Mode() Mode {
	return s.mode
}

// Level returns the numeric level and whether s is a level at all
func (s Speed) Level() (uint8, bool) {
	return s.level, s.mode == ModeLevel
}

// String renders the token written to the control file.
func (s Speed) String() string {
	switch s.mode {
	case ModeAuto:
		return "auto"
	case ModeDisengaged:
		return "disengaged"
	case ModeFullSpeed:
		return "full-speed"
	default:
		return strconv.Itoa(int(s.level))
	}
}

// MarshalText implements encoding.TextMarshaler
func (s Speed) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Speed) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = parsed

	return nil
}
