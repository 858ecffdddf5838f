package fan

import (
	"strconv"
	"strings"

	"codeberg.org/mutker/tpfanctl/internal/errors"
)

const (
	// Line positions in the control file. thinkpad_acpi prints
	// "status", "speed" and "level" in this order.
	statusLine = 0
	rpmLine    = 1
	levelLine  = 2

	commandMarker = "command"
)

// Status is a parsed snapshot of the control file.
type Status struct {
	State    string `json:"status"`
	RPM      uint16 `json:"rpm"`
	Level    string `json:"level"`
	Writable bool   `json:"writable"`
}

// This file is the only place that knows the control file layout. A
// label-based parser can replace these functions without touching callers.

func parseStatus(contents string) (Status, error) {
	rpm, err := parseRPM(contents)
	if err != nil {
		return Status{}, err
	}

	level, err := parseLevel(contents)
	if err != nil {
		return Status{}, err
	}

	state := ""
	if lines := strings.Split(contents, "\n"); len(lines) > statusLine {
		state = strings.TrimSpace(lines[statusLine])
		if _, value, ok := strings.Cut(state, ":"); ok {
			state = strings.TrimSpace(value)
		}
	}

	return Status{
		State:    state,
		RPM:      rpm,
		Level:    level,
		Writable: isWritable(contents),
	}, nil
}

func parseRPM(contents string) (uint16, error) {
	raw, err := lineValue(contents, rpmLine)
	if err != nil {
		return 0, err
	}

	rpm, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		return 0, errors.New().WithDescription(errors.ErrGeneric, "failed to parse RPM "+strconv.Quote(raw))
	}

	return uint16(rpm), nil
}

func parseLevel(contents string) (string, error) {
	return lineValue(contents, levelLine)
}

func isWritable(contents string) bool {
	return strings.Contains(contents, commandMarker)
}

func lineValue(contents string, n int) (string, error) {
	errFactory := errors.New()

	lines := strings.Split(contents, "\n")
	if len(lines) <= n {
		return "", errFactory.WithDescription(errors.ErrGeneric,
			"malformed control file: line "+strconv.Itoa(n+1)+" is missing")
	}

	_, value, ok := strings.Cut(lines[n], ":")
	if !ok {
		return "", errFactory.WithDescription(errors.ErrGeneric,
			"malformed control file: line "+strconv.Itoa(n+1)+" has no ':' separator")
	}

	return strings.TrimSpace(value), nil
}
