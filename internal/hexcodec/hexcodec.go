// ABOUTME: Deterministic conversion between byte blobs and their stored hex text form.
// ABOUTME: Digit order is low nibble first, which standard hex codecs cannot reproduce.

package hexcodec

import (
	"errors"
	"fmt"
)

// ErrMalformed is returned when text cannot be decoded as a stored binary
// value: the length is odd or a character is not a hex digit.
var ErrMalformed = errors.New("malformed hex value")

const digits = "0123456789abcdef"

// Encode returns the text form of value: two lowercase hex digits per byte,
// low nibble first. The empty slice encodes to the empty string.
func Encode(value []byte) string {
	buf := make([]byte, len(value)*2)
	for i, b := range value {
		buf[i*2] = digits[b&0x0f]
		buf[i*2+1] = digits[b>>4]
	}
	return string(buf)
}

// Decode converts text produced by Encode back into bytes. Uppercase digits
// are accepted on input; Encode only ever emits lowercase.
func Decode(s string) ([]byte, error) {
	n, err := DecodedLen(s)
	if err != nil {
		return nil, err
	}

	out := make([]byte, n)
	for i := 0; i < len(s); i += 2 {
		lo, _ := nibble(s[i])
		hi, _ := nibble(s[i+1])
		out[i/2] = hi<<4 | lo
	}
	return out, nil
}

// DecodedLen returns the number of bytes Decode would produce for s,
// validating s fully first.
func DecodedLen(s string) (int, error) {
	if len(s)%2 != 0 {
		return 0, fmt.Errorf("hex value has odd length %d: %w", len(s), ErrMalformed)
	}
	for i := 0; i < len(s); i++ {
		if _, ok := nibble(s[i]); !ok {
			return 0, fmt.Errorf("hex value has non-hex character %q at offset %d: %w", s[i], i, ErrMalformed)
		}
	}
	return len(s) / 2, nil
}

// nibble maps a hex digit to its value.
func nibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
