// Package generate regenerates the embedded leap-second table.
package generate

// LeapGenerator produces leap-second history rows from an upstream source.
type LeapGenerator interface {
	Name() string
	Generate() (*LeapTable, error)
}
