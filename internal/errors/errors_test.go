package errors_test

import (
	"fmt"
	"io/fs"
	"testing"

	"codeberg.org/mutker/tpfanctl/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorRendering(t *testing.T) {
	errFactory := errors.New()

	tests := []struct {
		name string
		err  errors.Error
		want string
	}{
		{"bare kind", errFactory.New(errors.ErrFanControlDisabled), "Fan control disabled"},
		{"with description", errFactory.WithDescription(errors.ErrInvalidValue, "banana is an invalid fan speed setting"), "Fan speed setting invalid: banana is an invalid fan speed setting"},
		{"help is not rendered", errFactory.WithHelp(errors.ErrFileNotFound, "Did you load thinkpad_acpi?", "/proc/acpi/ibm/fan not found"), "File not found: /proc/acpi/ibm/fan not found"},
		{"unknown code", errFactory.New(errors.ErrorCode("mystery")), "mystery"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestDescriptionAndHelpAreIndependent(t *testing.T) {
	errFactory := errors.New()

	onlyHelp := errFactory.New(errors.ErrPermissionDenied).WithHelp("Do you have root permissions?")
	assert.Empty(t, onlyHelp.Description())
	assert.Equal(t, "Do you have root permissions?", onlyHelp.Help())
	assert.Equal(t, "Permission Denied", onlyHelp.Error())

	both := onlyHelp.WithDescription("while trying to write")
	assert.Equal(t, "Do you have root permissions?", both.Help())
	assert.Equal(t, "Permission Denied: while trying to write", both.Error())
	assert.Empty(t, onlyHelp.Description(), "WithDescription must not mutate the receiver")
}

func TestWrapKeepsCause(t *testing.T) {
	err := errors.New().Wrap(errors.ErrGeneric, fs.ErrClosed)

	assert.True(t, errors.Is(err, fs.ErrClosed))
	assert.Equal(t, "Generic error: "+fs.ErrClosed.Error(), err.Error())
}

func TestCodeOf(t *testing.T) {
	inner := errors.New().WithHelp(errors.ErrValueTooLow, "Valid fan speeds range from 0-7", "-1 is negative")
	wrapped := fmt.Errorf("set fan: %w", inner)

	assert.Equal(t, errors.ErrValueTooLow, errors.CodeOf(wrapped))
	assert.True(t, errors.HasCode(wrapped, errors.ErrValueTooLow))
	assert.False(t, errors.HasCode(nil, errors.ErrValueTooLow))
	assert.Equal(t, "Valid fan speeds range from 0-7", errors.HelpOf(wrapped))

	require.Equal(t, errors.ErrorCode(""), errors.CodeOf(fs.ErrNotExist))
	assert.Empty(t, errors.HelpOf(fs.ErrNotExist))
}
