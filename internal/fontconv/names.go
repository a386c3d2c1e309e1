package fontconv

import (
	"encoding/binary"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Name table ids used by EOT headers.
const (
	NameFamily    = 1
	NameSubfamily = 2
	NameFullName  = 4
	NameVersion   = 5
)

const (
	platformMac      = 1
	platformWindows  = 3
	windowsEnglishUS = 0x0409
	nameRecordSize   = 12
	nameHeaderSize   = 6
)

var (
	utf16BE = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
)

// Name returns the name table string for id, preferring the Windows US
// English record. It returns "" when the font has no such record.
func (f *Font) Name(id uint16) string {
	data, ok := f.Table("name")
	if !ok || len(data) < nameHeaderSize {
		return ""
	}
	count := int(binary.BigEndian.Uint16(data[2:]))
	strOff := int(binary.BigEndian.Uint16(data[4:]))

	best, bestRank := "", 0
	for i := 0; i < count; i++ {
		r := data[nameHeaderSize+i*nameRecordSize:]
		if len(r) < nameRecordSize {
			break
		}
		platform := binary.BigEndian.Uint16(r)
		lang := binary.BigEndian.Uint16(r[4:])
		if binary.BigEndian.Uint16(r[6:]) != id {
			continue
		}
		length := int(binary.BigEndian.Uint16(r[8:]))
		off := strOff + int(binary.BigEndian.Uint16(r[10:]))
		if off+length > len(data) {
			continue
		}
		raw := data[off : off+length]

		rank := 0
		var s string
		switch {
		case platform == platformWindows:
			decoded, err := utf16BE.NewDecoder().Bytes(raw)
			if err != nil {
				continue
			}
			s = string(decoded)
			rank = 2
			if lang == windowsEnglishUS {
				rank = 3
			}
		case platform == platformMac:
			decoded, err := charmap.Macintosh.NewDecoder().Bytes(raw)
			if err != nil {
				continue
			}
			s = string(decoded)
			rank = 1
		default:
			continue
		}
		if rank > bestRank {
			best, bestRank = s, rank
		}
	}
	return best
}

// utf16LEBytes encodes s the way EOT headers store names.
func utf16LEBytes(s string) []byte {
	b, err := utf16LE.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil
	}
	return b
}
