package codec

import "iter"

// ByteFunc maps one content byte to its transformed value.
type ByteFunc func(b byte) byte

// DecodeByte deobfuscates a content byte. Bytes below the header threshold
// are structural and pass through unchanged.
func (c Config) DecodeByte(b byte) byte {
	if int(b) < c.HeaderThreshold {
		return b
	}
	return b ^ byte(c.XORKey)
}

// EncodeByte obfuscates a content byte. Line feeds and carriage returns pass
// through so the NAV output keeps its line structure.
//
// DecodeByte and EncodeByte are not inverses of each other for bytes where
// exactly one of them applies its exemption.
func (c Config) EncodeByte(b byte) byte {
	if b == '\n' || b == '\r' {
		return b
	}
	return b ^ byte(c.XORKey)
}

// Pass applies a ByteFunc to a content region, tracking progress milestones as
// it goes. A Pass is single-use.
type Pass struct {
	src      []byte
	dst      []byte
	fn       ByteFunc
	progress Progress
	started  bool
}

// NewPass prepares a pass of fn over content with steps progress milestones.
func NewPass(content []byte, fn ByteFunc, steps int) *Pass {
	return &Pass{
		src:      content,
		dst:      make([]byte, len(content)),
		fn:       fn,
		progress: NewProgress(len(content), steps),
	}
}

// NewDecodePass prepares the decode transform of a NAV content region.
func NewDecodePass(content []byte, cfg Config) *Pass {
	return NewPass(content, cfg.DecodeByte, cfg.ProgressSteps)
}

// NewEncodePass prepares the encode transform of a text content region.
func NewEncodePass(content []byte, cfg Config) *Pass {
	return NewPass(content, cfg.EncodeByte, cfg.ProgressSteps)
}

// Milestones transforms the content in order and yields the percentage of each
// milestone as it fires. The sequence can be ranged over once; later calls
// yield nothing. Stopping early stops the reporting, not the transform: the
// remaining bytes are still processed before the iterator returns.
func (p *Pass) Milestones() iter.Seq[int] {
	return func(yield func(int) bool) {
		if p.started {
			return
		}
		p.started = true

		emit := true
		for i, b := range p.src {
			var (
				percent int
				fired   bool
			)
			p.progress, percent, fired = p.progress.Advance(i)
			if fired && emit {
				emit = yield(percent)
			}
			p.dst[i] = p.fn(b)
		}
	}
}

// Output returns the transformed content, running the pass first if nobody
// ranged over Milestones.
func (p *Pass) Output() []byte {
	for range p.Milestones() {
	}
	return p.dst
}

// Progress returns the milestone state reached so far.
func (p *Pass) Progress() Progress {
	return p.progress
}

// DecodeContent applies the decode transform to a content region.
func DecodeContent(content []byte, cfg Config) []byte {
	return NewDecodePass(content, cfg).Output()
}

// EncodeContent applies the encode transform to a content region.
func EncodeContent(content []byte, cfg Config) []byte {
	return NewEncodePass(content, cfg).Output()
}
