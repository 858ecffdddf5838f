package sensors

import "fmt"

// Schema names the keys lm_sensors uses for a CPU temperature chip. The
// defaults match Intel coretemp as found on ThinkPads.
type Schema struct {
	// Chip is the top-level key holding per-core entries
	Chip string
	// CorePrefix is followed by the decimal core index, e.g. "Core 3"
	CorePrefix string
	// CoreOffset is added to the core index to build field names:
	// Core 0 reports temp2_input when the offset is 2
	CoreOffset int
	// PackageKey is the optional aggregate entry inside Chip
	PackageKey string
	// PackageField is the reading used from PackageKey
	PackageField string
}

const (
	DefaultChip         = "coretemp-isa-0000"
	DefaultCorePrefix   = "Core "
	DefaultCoreOffset   = 2
	DefaultPackageKey   = "Package id 0"
	DefaultPackageField = "temp1_input"
)

// DefaultSchema returns the coretemp layout
func DefaultSchema() Schema {
	return Schema{
		Chip:         DefaultChip,
		CorePrefix:   DefaultCorePrefix,
		CoreOffset:   DefaultCoreOffset,
		PackageKey:   DefaultPackageKey,
		PackageField: DefaultPackageField,
	}
}

// withDefaults fills empty keys. A zero Schema becomes DefaultSchema,
// including its core offset.
func (s Schema) withDefaults() Schema {
	d := DefaultSchema()
	if s == (Schema{}) {
		return d
	}
	if s.Chip == "" {
		s.Chip = d.Chip
	}
	if s.CorePrefix == "" {
		s.CorePrefix = d.CorePrefix
	}
	if s.PackageKey == "" {
		s.PackageKey = d.PackageKey
	}
	if s.PackageField == "" {
		s.PackageField = d.PackageField
	}

	return s
}

func (s Schema) field(id uint8, reading string) string {
	return fmt.Sprintf("temp%d_%s", int(id)+s.CoreOffset, reading)
}
