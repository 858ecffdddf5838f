package fan

// Controller reads and writes the platform fan control file. Every call
// opens the file afresh; nothing is cached between calls.
type Controller interface {
	// CurrentSpeed returns the speed token currently reported by the control file
	CurrentSpeed() (string, error)

	// RPM returns the fan's current revolutions per minute
	RPM() (uint16, error)

	// Status returns the whole control file state in one read
	Status() (Status, error)

	// Capable reports whether the kernel accepts fan speed writes
	Capable() (bool, error)

	// SetSpeed writes a new fan speed. It does not compare against the
	// current speed first.
	SetSpeed(speed Speed) error

	// Path returns the control file location
	Path() string
}
