package fontconv

import (
	"fmt"

	"github.com/tdewolff/font"
)

// ParseWOFF unwraps a WOFF 1.0 font.
func ParseWOFF(data []byte) (*Font, error) {
	sfnt, err := font.ParseWOFF(data)
	if err != nil {
		return nil, fmt.Errorf("woff: %w", err)
	}
	return ParseSFNT(sfnt)
}

// ParseWOFF2 unwraps a WOFF2 font, reversing the glyf/loca and hmtx
// transforms when present.
func ParseWOFF2(data []byte) (*Font, error) {
	sfnt, err := font.ParseWOFF2(data)
	if err != nil {
		return nil, fmt.Errorf("woff2: %w", err)
	}
	return ParseSFNT(sfnt)
}

// ParseEOT unwraps an Embedded OpenType font, undoing XOR obfuscation.
func ParseEOT(data []byte) (*Font, error) {
	sfnt, err := font.ParseEOT(data)
	if err != nil {
		return nil, fmt.Errorf("eot: %w", err)
	}
	return ParseSFNT(sfnt)
}
