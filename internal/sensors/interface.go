package sensors

import "context"

// TemperatureReader provides CPU temperature snapshots
type TemperatureReader interface {
	// Temperatures returns every core's readings and the average
	Temperatures(ctx context.Context) (Temperatures, error)

	// CoreTemperature returns one core's readings, failing with
	// ErrInvalidValue if the core does not exist
	CoreTemperature(ctx context.Context, id uint8) (CoreTemperature, error)

	// Cores returns the indices of every reported core
	Cores(ctx context.Context) ([]uint8, error)
}

var _ TemperatureReader = (*Reader)(nil)
