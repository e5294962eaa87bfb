package device

import "log/slog"

// DescriptorMode selects how GET_DESCRIPTOR is answered.
type DescriptorMode uint8

// Descriptor response modes.
const (
	// DescriptorModeTruncate sends the device descriptor cut to wLength.
	DescriptorModeTruncate DescriptorMode = iota

	// DescriptorModePlaceholder always sends the first PlaceholderSize bytes
	// of the device descriptor, still capped at wLength.
	DescriptorModePlaceholder
)

// PlaceholderSize is the fixed answer size of DescriptorModePlaceholder.
const PlaceholderSize = 4

// String returns the mode name.
func (m DescriptorMode) String() string {
	switch m {
	case DescriptorModeTruncate:
		return "truncate"
	case DescriptorModePlaceholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

// Config holds the engine configuration.
type Config struct {
	// DescriptorMode selects the GET_DESCRIPTOR answer.
	DescriptorMode DescriptorMode

	// Logger receives engine events. Nil means pkg.DefaultLogger.
	Logger *slog.Logger
}

func defaultConfig() Config {
	return Config{DescriptorMode: DescriptorModeTruncate}
}

// Option is a functional option for configuring the Engine.
type Option func(*Config)

// WithDescriptorMode sets the GET_DESCRIPTOR answer mode.
//
// Example:
//
//	eng := device.NewEngine(platform, &desc,
//	    device.WithDescriptorMode(device.DescriptorModePlaceholder))
func WithDescriptorMode(mode DescriptorMode) Option {
	return func(c *Config) {
		c.DescriptorMode = mode
	}
}

// WithLogger sets the logger for engine events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
