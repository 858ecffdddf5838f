package fan

import (
	"io"
	"io/fs"
	"os"

	"codeberg.org/mutker/tpfanctl/internal/errors"
	"codeberg.org/mutker/tpfanctl/internal/logger"
	"golang.org/x/sys/unix"
)

// DefaultControlFile is where thinkpad_acpi exposes fan control.
const DefaultControlFile = "/proc/acpi/ibm/fan"

const (
	helpLoadModule     = "Did you load thinkpad_acpi?"
	helpEnableControl  = "Did you load thinkpad_acpi with fan_control=1?"
	helpReadPermission = "Do you have sufficient permissions?"
	helpRootPermission = "Do you have root permissions?"
)

// openControlFn opens the control file for a read followed by an appended
// write.
var openControlFn = openControl

func openControl(path string) (io.ReadWriteCloser, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_APPEND, 0)
	if err != nil {
		return nil, err
	}

	return f, nil
}

type fileController struct {
	path   string
	logger logger.Logger
}

// NewController returns a Controller for the control file at path.
func NewController(path string, log logger.Logger) Controller {
	if path == "" {
		path = DefaultControlFile
	}
	if log == nil {
		log = logger.Nop()
	}

	return &fileController{
		path:   path,
		logger: log,
	}
}

func (c *fileController) Path() string {
	return c.path
}

func (c *fileController) CurrentSpeed() (string, error) {
	contents, err := c.read()
	if err != nil {
		return "", err
	}

	level, err := parseLevel(contents)
	if err != nil {
		return "", err
	}
	c.logger.Debug().Str("level", level).Msg("Current fan speed read")

	return level, nil
}

func (c *fileController) RPM() (uint16, error) {
	contents, err := c.read()
	if err != nil {
		return 0, err
	}

	rpm, err := parseRPM(contents)
	if err != nil {
		return 0, err
	}
	c.logger.Debug().Uint16("rpm", rpm).Msg("Fan RPM read")

	return rpm, nil
}

func (c *fileController) Status() (Status, error) {
	contents, err := c.read()
	if err != nil {
		return Status{}, err
	}

	return parseStatus(contents)
}

func (c *fileController) Capable() (bool, error) {
	contents, err := c.read()
	if err != nil {
		return false, err
	}

	return isWritable(contents), nil
}

func (c *fileController) SetSpeed(speed Speed) error {
	errFactory := errors.New()

	f, err := openControlFn(c.path)
	if err != nil {
		return c.classifyOpen(err, "while trying to write to "+c.path, helpRootPermission)
	}
	defer f.Close()

	contents, err := io.ReadAll(f)
	if err != nil {
		return errFactory.Wrap(errors.ErrGeneric, err)
	}

	if !isWritable(string(contents)) {
		return errFactory.WithHelp(errors.ErrFanControlDisabled, helpEnableControl, "Can't control the fan speed")
	}

	command := "level " + speed.String()
	if _, err := f.Write([]byte(command)); err != nil {
		if errors.Is(err, unix.EINVAL) {
			return errFactory.WithHelp(errors.ErrFanControlDisabled, helpEnableControl, "Can't control the fan speed")
		}
		return errFactory.Wrap(errors.ErrGeneric, err)
	}

	c.logger.Debug().Str("command", command).Str("path", c.path).Msg("Fan speed written")

	return nil
}

func (c *fileController) read() (string, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return "", c.classifyOpen(err, "while trying to read from "+c.path, helpReadPermission)
	}
	defer f.Close()

	contents, err := io.ReadAll(f)
	if err != nil {
		return "", errors.New().Wrap(errors.ErrGeneric, err)
	}

	return string(contents), nil
}

func (c *fileController) classifyOpen(err error, action, permissionHelp string) error {
	errFactory := errors.New()

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return errFactory.WithHelp(errors.ErrFileNotFound, helpLoadModule, c.path+" not found")
	case errors.Is(err, fs.ErrPermission):
		return errFactory.WithHelp(errors.ErrPermissionDenied, permissionHelp, action)
	default:
		return errFactory.Wrap(errors.ErrGeneric, err)
	}
}
