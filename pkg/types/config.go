package types

import "errors"

// Durability modes for snapshot persistence after mutating operations.
//
// DurabilityVolatile preserves the store's historical best-effort policy:
// snapshot failures are logged and swallowed, and a crash between a
// mutation and the next successful persist loses that mutation on reload.
// DurabilityDurable surfaces persist errors to the caller instead.
const (
	DurabilityVolatile = "volatile"
	DurabilityDurable  = "durable"
)

// Config holds parameters for Store.Open.
type Config struct {
	// DataDir is the directory holding the working database and the
	// durable snapshot file. Created if absent.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Durability selects the persistence mode after mutations.
	// Empty means DurabilityVolatile.
	Durability string `json:"durability" yaml:"durability"`
}

// Config validation errors.
var (
	ErrDataDirEmpty      = errors.New("data_dir must not be empty")
	ErrDurabilityUnknown = errors.New("unknown durability mode")
)

// validDurability is the set of recognized durability modes.
var validDurability = map[string]bool{
	"":                 true,
	DurabilityVolatile: true,
	DurabilityDurable:  true,
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return ErrDataDirEmpty
	}
	if !validDurability[c.Durability] {
		return ErrDurabilityUnknown
	}
	return nil
}

// Durable reports whether persist errors should surface to the caller.
func (c Config) Durable() bool {
	return c.Durability == DurabilityDurable
}
