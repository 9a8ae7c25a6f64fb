package codec

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// textCodec converts between Go strings and bytes in a configured character
// encoding. Conversions are strict: anything the encoding cannot represent
// exactly is reported as ErrEncoding instead of being replaced.
type textCodec struct {
	name string
	enc  encoding.Encoding
}

func newTextCodec(name string) (textCodec, error) {
	enc, err := htmlindex.Get(name)
	if err != nil {
		return textCodec{}, err
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = name
	}
	return textCodec{name: canonical, enc: enc}, nil
}

func (t textCodec) isUTF8() bool {
	return t.name == "utf-8"
}

// decode interprets b as text.
func (t textCodec) decode(b []byte) (string, error) {
	if t.isUTF8() {
		if !utf8.Valid(b) {
			return "", fmt.Errorf("%w: %s", ErrEncoding, t.name)
		}
		return string(b), nil
	}

	s, err := t.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrEncoding, t.name, err)
	}
	// Decoders substitute U+FFFD for undecodable input; a lossless round trip
	// is the only reliable validity check across encodings.
	back, err := t.enc.NewEncoder().Bytes(s)
	if err != nil || !bytes.Equal(back, b) {
		return "", fmt.Errorf("%w: %s", ErrEncoding, t.name)
	}
	return string(s), nil
}

// encode renders s in the configured encoding.
func (t textCodec) encode(s string) ([]byte, error) {
	if t.isUTF8() {
		if !utf8.ValidString(s) {
			return nil, fmt.Errorf("%w: %s", ErrEncoding, t.name)
		}
		return []byte(s), nil
	}

	b, err := t.enc.NewEncoder().String(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEncoding, t.name, err)
	}
	return []byte(b), nil
}
