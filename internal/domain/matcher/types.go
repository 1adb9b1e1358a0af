package matcher

import "fmt"

// Config holds the matching thresholds and the payment date tolerance.
// It is passed in at construction so tests can exercise multiple threshold
// combinations without process-wide state.
type Config struct {
	// PrimaryThreshold is the minimum token-set similarity between the
	// supplier name and the payment description alone.
	PrimaryThreshold int

	// SecondaryThreshold is the minimum similarity between the supplier
	// name and the description combined with both bank detail fields. It
	// is intentionally higher than PrimaryThreshold because the combined
	// text is noisier.
	SecondaryThreshold int

	// DateToleranceDays is how many days before the invoice date a
	// payment may fall and still qualify. There is no upper bound on how
	// far after the invoice date a payment may be.
	DateToleranceDays int
}

// DefaultConfig returns the thresholds used in production.
func DefaultConfig() Config {
	return Config{
		PrimaryThreshold:   80,
		SecondaryThreshold: 90,
		DateToleranceDays:  5,
	}
}

// Validate checks the config for out-of-range values.
func (c Config) Validate() error {
	if c.PrimaryThreshold < 0 || c.PrimaryThreshold > 100 {
		return fmt.Errorf("primary threshold %d out of range [0,100]", c.PrimaryThreshold)
	}
	if c.SecondaryThreshold < 0 || c.SecondaryThreshold > 100 {
		return fmt.Errorf("secondary threshold %d out of range [0,100]", c.SecondaryThreshold)
	}
	if c.SecondaryThreshold < c.PrimaryThreshold {
		return fmt.Errorf("secondary threshold %d below primary threshold %d", c.SecondaryThreshold, c.PrimaryThreshold)
	}
	if c.DateToleranceDays < 0 {
		return fmt.Errorf("date tolerance %d days is negative", c.DateToleranceDays)
	}
	return nil
}
