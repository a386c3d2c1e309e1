package fontconv

import (
	"encoding/binary"
	"fmt"
	"sort"
)

// sfnt versions.
const (
	VersionTrueType uint32 = 0x00010000
	VersionCFF      uint32 = 0x4F54544F // "OTTO"
	VersionApple    uint32 = 0x74727565 // "true"
)

const (
	sfntHeaderSize = 12
	sfntEntrySize  = 16

	// headChecksumAdjustment is the offset of checkSumAdjustment in head.
	headChecksumAdjustment = 8
	checksumMagic          = 0xB1B0AFBA
)

// Table is one sfnt table.
type Table struct {
	Tag  string
	Data []byte
}

// Font is a parsed sfnt font.
type Font struct {
	Version uint32
	Tables  []Table // Sorted by tag
}

// ParseSFNT parses a TrueType or OpenType font.
func ParseSFNT(data []byte) (*Font, error) {
	if len(data) < sfntHeaderSize {
		return nil, fmt.Errorf("font too short: %d bytes", len(data))
	}
	f := &Font{Version: binary.BigEndian.Uint32(data)}
	switch f.Version {
	case VersionTrueType, VersionCFF, VersionApple:
	default:
		return nil, fmt.Errorf("unsupported sfnt version %#08x", f.Version)
	}

	n := int(binary.BigEndian.Uint16(data[4:]))
	if len(data) < sfntHeaderSize+n*sfntEntrySize {
		return nil, fmt.Errorf("truncated table directory")
	}
	for i := 0; i < n; i++ {
		e := data[sfntHeaderSize+i*sfntEntrySize:]
		tag := string(e[:4])
		off := binary.BigEndian.Uint32(e[8:])
		length := binary.BigEndian.Uint32(e[12:])
		if uint64(off)+uint64(length) > uint64(len(data)) {
			return nil, fmt.Errorf("table %q out of bounds", tag)
		}
		f.Tables = append(f.Tables, Table{Tag: tag, Data: data[off : off+length]})
	}
	f.sortTables()
	return f, nil
}

// IsTrueType reports whether the font has TrueType outlines.
func (f *Font) IsTrueType() bool {
	return f.Version == VersionTrueType || f.Version == VersionApple
}

// Table returns the data of the table tagged tag.
func (f *Font) Table(tag string) ([]byte, bool) {
	for _, t := range f.Tables {
		if t.Tag == tag {
			return t.Data, true
		}
	}
	return nil, false
}

func (f *Font) sortTables() {
	sort.Slice(f.Tables, func(i, j int) bool { return f.Tables[i].Tag < f.Tables[j].Tag })
}

// Extension returns the file extension matching the outline format.
func (f *Font) Extension() string {
	if f.IsTrueType() {
		return ".ttf"
	}
	return ".otf"
}

// SFNT serialises the font with 4-byte aligned tables, fresh table checksums
// and a recomputed head checkSumAdjustment.
func (f *Font) SFNT() []byte {
	n := len(f.Tables)
	size := sfntHeaderSize + n*sfntEntrySize
	for _, t := range f.Tables {
		size += pad4(len(t.Data))
	}

	out := make([]byte, size)
	binary.BigEndian.PutUint32(out, f.Version)
	binary.BigEndian.PutUint16(out[4:], uint16(n))
	searchRange, entrySelector, rangeShift := searchParams(n)
	binary.BigEndian.PutUint16(out[6:], searchRange)
	binary.BigEndian.PutUint16(out[8:], entrySelector)
	binary.BigEndian.PutUint16(out[10:], rangeShift)

	headOffset := -1
	off := sfntHeaderSize + n*sfntEntrySize
	for i, t := range f.Tables {
		data := t.Data
		if t.Tag == "head" && len(data) >= headChecksumAdjustment+4 {
			data = append([]byte(nil), data...)
			binary.BigEndian.PutUint32(data[headChecksumAdjustment:], 0)
			headOffset = off
		}
		e := out[sfntHeaderSize+i*sfntEntrySize:]
		copy(e, tagBytes(t.Tag))
		binary.BigEndian.PutUint32(e[4:], checksum(data))
		binary.BigEndian.PutUint32(e[8:], uint32(off))
		binary.BigEndian.PutUint32(e[12:], uint32(len(data)))
		copy(out[off:], data)
		off += pad4(len(data))
	}

	if headOffset >= 0 {
		binary.BigEndian.PutUint32(out[headOffset+headChecksumAdjustment:], checksumMagic-checksum(out))
	}
	return out
}

func searchParams(n int) (searchRange, entrySelector, rangeShift uint16) {
	if n == 0 {
		return 0, 0, 0
	}
	es := 0
	for 1<<(es+1) <= n {
		es++
	}
	sr := (1 << es) * 16
	return uint16(sr), uint16(es), uint16(n*16 - sr)
}

func checksum(data []byte) uint32 {
	var sum uint32
	for i := 0; i < len(data); i += 4 {
		var word [4]byte
		copy(word[:], data[i:])
		sum += binary.BigEndian.Uint32(word[:])
	}
	return sum
}

func pad4(n int) int { return (n + 3) &^ 3 }

func tagBytes(tag string) []byte {
	b := []byte("    ")
	copy(b, tag)
	return b
}
