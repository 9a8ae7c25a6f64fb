package codec

import (
	"fmt"
)

// Stats describes how an input was partitioned.
type Stats struct {
	HeaderBytes  int `json:"header_bytes"`
	ContentBytes int `json:"content_bytes"`
}

// Option configures a NavCodec.
type Option func(*NavCodec)

// WithProgress registers fn to receive each progress milestone of a transform.
func WithProgress(fn func(percent int)) Option {
	return func(c *NavCodec) {
		c.onProgress = fn
	}
}

// NavCodec converts between NAV bytes and text for a fixed Config.
type NavCodec struct {
	cfg        Config
	text       textCodec
	onProgress func(percent int)
}

// NewNavCodec validates cfg and returns a codec for it.
func NewNavCodec(cfg Config, opts ...Option) (*NavCodec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	text, err := newTextCodec(cfg.TextEncoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	c := &NavCodec{cfg: cfg, text: text}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the codec configuration.
func (c *NavCodec) Config() Config {
	return c.cfg
}

// Decode converts NAV bytes into text.
func (c *NavCodec) Decode(raw []byte) (string, error) {
	text, _, err := c.DecodeWithStats(raw)
	return text, err
}

// DecodeWithStats converts NAV bytes into text and reports the partition.
func (c *NavCodec) DecodeWithStats(raw []byte) (string, Stats, error) {
	if len(raw) == 0 {
		return "", Stats{}, ErrEmptyInput
	}

	header, content := SplitBinary(raw, c.cfg.HeaderThreshold)
	stats := Stats{HeaderBytes: len(header), ContentBytes: len(content)}

	headerText, err := c.text.decode(header)
	if err != nil {
		return "", stats, fmt.Errorf("decode header: %w", err)
	}

	plain := c.run(NewDecodePass(content, c.cfg))
	contentText, err := c.text.decode(plain)
	if err != nil {
		return "", stats, fmt.Errorf("decode content: %w", err)
	}

	return headerText + contentText, stats, nil
}

// Encode converts text into NAV bytes.
func (c *NavCodec) Encode(text string) ([]byte, error) {
	out, _, err := c.EncodeWithStats(text)
	return out, err
}

// EncodeWithStats converts text into NAV bytes and reports the partition.
func (c *NavCodec) EncodeWithStats(text string) ([]byte, Stats, error) {
	lines := SplitLines(text)
	if len(lines) == 0 {
		return nil, Stats{}, ErrEmptyInput
	}

	headerText, contentText := SplitText(lines, c.cfg.ContentLineThreshold)

	header, err := c.text.encode(headerText)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("encode header: %w", err)
	}
	content, err := c.text.encode(contentText)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("encode content: %w", err)
	}
	stats := Stats{HeaderBytes: len(header), ContentBytes: len(content)}

	obfuscated := c.run(NewEncodePass(content, c.cfg))

	out := make([]byte, 0, len(header)+len(obfuscated))
	out = append(out, header...)
	out = append(out, obfuscated...)
	return out, stats, nil
}

// ParseText interprets raw bytes as text in the configured encoding.
func (c *NavCodec) ParseText(raw []byte) (string, error) {
	return c.text.decode(raw)
}

// FormatText renders text as bytes in the configured encoding.
func (c *NavCodec) FormatText(text string) ([]byte, error) {
	return c.text.encode(text)
}

func (c *NavCodec) run(p *Pass) []byte {
	for percent := range p.Milestones() {
		if c.onProgress != nil {
			c.onProgress(percent)
		}
	}
	return p.Output()
}

// Decode converts NAV bytes into text using cfg.
func Decode(raw []byte, cfg Config) (string, error) {
	c, err := NewNavCodec(cfg)
	if err != nil {
		return "", err
	}
	return c.Decode(raw)
}

// Encode converts text into NAV bytes using cfg.
func Encode(text string, cfg Config) ([]byte, error) {
	c, err := NewNavCodec(cfg)
	if err != nil {
		return nil, err
	}
	return c.Encode(text)
}
