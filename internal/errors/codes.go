package errors

// Fan and sensor errors. This set is closed: the fan and sensors packages
// report every failure through one of these codes.
const (
	ErrPermissionDenied   ErrorCode = "permission_denied"
	ErrFanControlDisabled ErrorCode = "fan_control_disabled"
	ErrInvalidValue       ErrorCode = "invalid_value"
	ErrFileNotFound       ErrorCode = "file_not_found"
	ErrValueTooHigh       ErrorCode = "value_too_high"
	ErrValueTooLow        ErrorCode = "value_too_low"
	ErrGeneric            ErrorCode = "generic_error"
)

// Application errors
const (
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"
	ErrAlreadyRunning  ErrorCode = "already_running"
)

var errorMessages = map[ErrorCode]string{
	ErrPermissionDenied:   "Permission Denied",
	ErrFanControlDisabled: "Fan control disabled",
	ErrInvalidValue:       "Fan speed setting invalid",
	ErrFileNotFound:       "File not found",
	ErrValueTooHigh:       "Fan speed setting too high",
	ErrValueTooLow:        "Fan speed setting too low",
	ErrGeneric:            "Generic error",
	ErrInternal:           "Internal error occurred",
	ErrInvalidConfig:      "Invalid configuration",
	ErrReadConfig:         "Failed to read config file",
	ErrBindFlags:          "Failed to bind flags",
	ErrInvalidLogLevel:    "Invalid log level",
	ErrAlreadyRunning:     "Another instance is already running",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
