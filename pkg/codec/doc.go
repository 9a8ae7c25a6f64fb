// Package codec converts NAV files to text and back.
//
// A NAV file is a plaintext header followed by XOR-obfuscated content. The
// format has no magic number, version field or checksum:
//
//	[Header: bytes < HeaderThreshold][Content: bytes XOR XORKey, 0x0A/0x0D untouched]
//
// # Boundary Detection
//
// The split between header and content is found differently per direction:
//
//   - Decoding (bytes to text): the header is the leading run of bytes whose
//     value is below HeaderThreshold. The first byte at or above the threshold
//     starts the content, and everything after it is content.
//   - Encoding (text to bytes): the text is split into lines that keep their
//     terminators. The first line longer than ContentLineThreshold characters
//     starts the content; all later lines are content, short or not.
//
// Header bytes are copied verbatim in both directions.
//
// # Transform
//
// Content bytes are XORed with a single-byte key, one byte at a time, with no
// chaining. Decoding leaves bytes below HeaderThreshold unchanged; encoding
// leaves line feeds and carriage returns unchanged. The exemptions differ, so
// encode(decode(x)) is not x in general.
//
// This is obfuscation, not encryption.
//
// # Usage
//
//	c, err := codec.NewNavCodec(codec.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//
//	text, err := c.Decode(navBytes)
//	if err != nil {
//	    return err
//	}
//
//	navBytes, err = c.Encode(text)
//
// # Progress
//
// A transform Pass reports progress milestones as an iter.Seq[int] of
// percentages, computed by the Progress value type:
//
//	pass := codec.NewDecodePass(content, cfg)
//	for percent := range pass.Milestones() {
//	    log.Printf("Progress: %d%%", percent)
//	}
//	plain := pass.Output()
//
// # Error Handling
//
// Errors wrap one of ErrEmptyInput, ErrEncoding or ErrInvalidConfig; file
// level callers add ErrMissingFile. Match them with errors.Is.
//
// # Thread Safety
//
// NavCodec holds no mutable state besides the optional progress callback and
// may be shared between goroutines if that callback is safe for concurrent
// use. A Pass belongs to a single goroutine.
package codec
