package fontconv

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	eotVersion        uint32 = 0x00020001
	eotMagic          uint16 = 0x504C
	eotMagicOffset           = 34
	eotCharsetDefault        = 1

	eotFlagXOR uint32 = 0x10000000
	eotXORKey         = 0x50
)

// OS/2 field offsets.
const (
	os2WeightClass   = 4
	os2FsType        = 8
	os2Panose        = 32
	os2UnicodeRange  = 42
	os2FsSelection   = 62
	os2CodePageRange = 78
	os2ItalicBit     = 0x01
)

// ToEOT wraps f as an uncompressed Embedded OpenType (version 0x00020001).
func ToEOT(f *Font) ([]byte, error) {
	os2, ok := f.Table("OS/2")
	if !ok || len(os2) < os2FsSelection+2 {
		return nil, fmt.Errorf("EOT needs an OS/2 table")
	}
	fontData := f.SFNT()
	g, err := ParseSFNT(fontData)
	if err != nil {
		return nil, err
	}
	head, ok := g.Table("head")
	if !ok || len(head) < headChecksumAdjustment+4 {
		return nil, fmt.Errorf("EOT needs a head table")
	}

	var b bytes.Buffer
	le := binary.LittleEndian
	put32 := func(v uint32) { _ = binary.Write(&b, le, v) }
	put16 := func(v uint16) { _ = binary.Write(&b, le, v) }
	putName := func(id uint16) {
		name := utf16LEBytes(f.Name(id))
		put16(0) // padding
		put16(uint16(len(name)))
		b.Write(name)
	}

	put32(0) // EOTSize, patched below
	put32(uint32(len(fontData)))
	put32(eotVersion)
	put32(0) // flags
	b.Write(os2[os2Panose : os2Panose+10])
	b.WriteByte(eotCharsetDefault)
	italic := byte(0)
	if binary.BigEndian.Uint16(os2[os2FsSelection:])&os2ItalicBit != 0 {
		italic = 1
	}
	b.WriteByte(italic)
	put32(uint32(binary.BigEndian.Uint16(os2[os2WeightClass:])))
	put16(binary.BigEndian.Uint16(os2[os2FsType:]))
	put16(eotMagic)
	for i := 0; i < 4; i++ {
		put32(binary.BigEndian.Uint32(os2[os2UnicodeRange+4*i:]))
	}
	for i := 0; i < 2; i++ {
		var v uint32
		if len(os2) >= os2CodePageRange+8 {
			v = binary.BigEndian.Uint32(os2[os2CodePageRange+4*i:])
		}
		put32(v)
	}
	put32(binary.BigEndian.Uint32(head[headChecksumAdjustment:]))
	for i := 0; i < 4; i++ {
		put32(0) // reserved
	}
	putName(NameFamily)
	putName(NameSubfamily)
	putName(NameVersion)
	putName(NameFullName)
	put16(0) // padding
	put16(0) // root string size
	b.Write(fontData)

	out := b.Bytes()
	le.PutUint32(out, uint32(len(out)))
	return out, nil
}

func isEOT(data []byte) bool {
	return len(data) > eotMagicOffset+2 && binary.LittleEndian.Uint16(data[eotMagicOffset:]) == eotMagic
}
