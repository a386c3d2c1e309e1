package fontconv

import (
	"encoding/binary"
	"fmt"
)

// Format identifies a font container.
type Format string

const (
	FormatTrueType   Format = "ttf"
	FormatOpenType   Format = "otf"
	FormatWOFF       Format = "woff"
	FormatWOFF2      Format = "woff2"
	FormatEOT        Format = "eot"
	FormatCollection Format = "ttc"
	FormatSVG        Format = "svg"
	FormatUnknown    Format = ""
)

// Detect sniffs the container format of data.
func Detect(data []byte) Format {
	if len(data) >= 4 {
		switch binary.BigEndian.Uint32(data) {
		case VersionTrueType, VersionApple:
			return FormatTrueType
		case VersionCFF:
			return FormatOpenType
		case woffSignature:
			return FormatWOFF
		case woff2Signature:
			return FormatWOFF2
		case 0x74746366: // "ttcf"
			return FormatCollection
		}
	}
	if isEOT(data) {
		return FormatEOT
	}
	if looksLikeSVG(data) {
		return FormatSVG
	}
	return FormatUnknown
}

func looksLikeSVG(data []byte) bool {
	n := len(data)
	if n > 512 {
		n = 512
	}
	for i := 0; i+4 <= n; i++ {
		if string(data[i:i+4]) == "<svg" {
			return true
		}
	}
	return false
}

// Decode parses any single-font container this package can unwrap.
func Decode(data []byte) (*Font, error) {
	switch format := Detect(data); format {
	case FormatTrueType, FormatOpenType:
		return ParseSFNT(data)
	case FormatWOFF:
		return ParseWOFF(data)
	case FormatWOFF2:
		return ParseWOFF2(data)
	case FormatEOT:
		return ParseEOT(data)
	default:
		return nil, fmt.Errorf("cannot decode %q font container", string(format))
	}
}

// Encode writes f in format to.
func Encode(f *Font, to Format) ([]byte, error) {
	switch to {
	case FormatTrueType:
		if !f.IsTrueType() {
			return nil, fmt.Errorf("font has CFF outlines and cannot be written as ttf")
		}
		return f.SFNT(), nil
	case FormatOpenType:
		return f.SFNT(), nil
	case FormatWOFF:
		return ToWOFF(f)
	case FormatWOFF2:
		return ToWOFF2(f)
	case FormatEOT:
		return ToEOT(f)
	default:
		return nil, fmt.Errorf("cannot encode %q font container", string(to))
	}
}
