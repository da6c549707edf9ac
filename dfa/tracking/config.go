package tracking

// Config configures the limits and fast paths of the tracking DFA.
//
// Limits are checked once, when the executor is built. A search never fails
// because of them.
type Config struct {
	// MaxStates is the maximum number of automaton states.
	//
	// Default: 100,000
	MaxStates int

	// MaxTransitions is the maximum number of transitions over all states.
	//
	// Default: 1,000,000
	MaxTransitions int

	// MaxCounterMemory bounds the estimated match-time memory of the counter
	// trackers, in bytes. Each quantifier is estimated at
	// cells × upper bound × 4 bytes.
	//
	// Default: 16 MiB
	MaxCounterMemory int

	// FastForward enables the bulk index-of scan at self-loop states that
	// carry acceleration data.
	//
	// Default: true
	FastForward bool

	// InterruptCheckInterval is the number of loop iterations between two
	// checks of the search context.
	//
	// Default: 4096
	InterruptCheckInterval int
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxStates:              100_000,
		MaxTransitions:         1_000_000,
		MaxCounterMemory:       16 << 20,
		FastForward:            true,
		InterruptCheckInterval: 4096,
	}
}

// Validate checks if the configuration is valid.
// Returns an error if any parameter is out of acceptable range.
func (c *Config) Validate() error {
	if c.MaxStates <= 0 {
		return &Error{
			Kind:    InvalidConfig,
			Message: "MaxStates must be > 0",
		}
	}

	if c.MaxTransitions <= 0 {
		return &Error{
			Kind:    InvalidConfig,
			Message: "MaxTransitions must be > 0",
		}
	}

	if c.MaxCounterMemory <= 0 {
		return &Error{
			Kind:    InvalidConfig,
			Message: "MaxCounterMemory must be > 0",
		}
	}

	if c.InterruptCheckInterval <= 0 {
		return &Error{
			Kind:    InvalidConfig,
			Message: "InterruptCheckInterval must be > 0",
		}
	}

	return nil
}

// WithMaxStates returns a new config with the specified state limit
func (c Config) WithMaxStates(n int) Config {
	c.MaxStates = n
	return c
}

// WithMaxTransitions returns a new config with the specified transition limit
func (c Config) WithMaxTransitions(n int) Config {
	c.MaxTransitions = n
	return c
}

// WithMaxCounterMemory returns a new config with the specified counter memory ceiling
func (c Config) WithMaxCounterMemory(bytes int) Config {
	c.MaxCounterMemory = bytes
	return c
}

// WithFastForward returns a new config with fast-forward enabled/disabled
func (c Config) WithFastForward(enabled bool) Config {
	c.FastForward = enabled
	return c
}

// WithInterruptCheckInterval returns a new config with the specified check interval
func (c Config) WithInterruptCheckInterval(n int) Config {
	c.InterruptCheckInterval = n
	return c
}
