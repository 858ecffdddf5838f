package errors

// ErrorCode represents a unique identifier for each error type
type ErrorCode string

// Error represents a domain-specific error with an optional description of
// what happened and an optional hint on how to fix it
type Error interface {
	error
	Code() ErrorCode
	Description() string
	Help() string
	WithDescription(desc string) Error
	WithHelp(help string) Error
	Unwrap() error
}

// Factory defines methods for creating domain errors
type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithDescription(code ErrorCode, desc string) Error
	WithHelp(code ErrorCode, help, desc string) Error
}
