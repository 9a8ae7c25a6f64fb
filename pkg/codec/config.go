package codec

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Defaults used when no configuration file or flag overrides a value.
const (
	DefaultXORKey               = 0x85
	DefaultHeaderThreshold      = 128
	DefaultContentLineThreshold = 30
	DefaultProgressSteps        = 20
	DefaultTextEncoding         = "utf-8"

	// MaxProgressSteps keeps reported percentages strictly increasing.
	MaxProgressSteps = 100
)

// Config holds the parameters of one codec invocation. It is passed by value
// and never modified after construction.
type Config struct {
	XORKey               int    `yaml:"xor_key" json:"xor_key"`
	HeaderThreshold      int    `yaml:"header_threshold" json:"header_threshold"`
	ContentLineThreshold int    `yaml:"content_line_threshold" json:"content_line_threshold"`
	ProgressSteps        int    `yaml:"progress_steps" json:"progress_steps"`
	TextEncoding         string `yaml:"text_encoding" json:"text_encoding"`
}

// DefaultConfig returns the configuration NAV files are produced with.
func DefaultConfig() Config {
	return Config{
		XORKey:               DefaultXORKey,
		HeaderThreshold:      DefaultHeaderThreshold,
		ContentLineThreshold: DefaultContentLineThreshold,
		ProgressSteps:        DefaultProgressSteps,
		TextEncoding:         DefaultTextEncoding,
	}
}

// Validate checks that every field is within range. The returned error wraps
// ErrInvalidConfig.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.XORKey, validation.Min(0), validation.Max(255)),
		validation.Field(&c.HeaderThreshold, validation.Min(0), validation.Max(255)),
		validation.Field(&c.ContentLineThreshold, validation.Min(0)),
		validation.Field(&c.ProgressSteps, validation.Required, validation.Min(1), validation.Max(MaxProgressSteps)),
		validation.Field(&c.TextEncoding, validation.Required, validation.By(knownEncoding)),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func knownEncoding(value interface{}) error {
	name, _ := value.(string)
	if _, err := newTextCodec(name); err != nil {
		return fmt.Errorf("unknown text encoding %q", name)
	}
	return nil
}
