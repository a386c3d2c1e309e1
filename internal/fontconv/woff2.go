package fontconv

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/andybalholm/brotli"
)

const (
	woff2Signature  uint32 = 0x774F4632 // "wOF2"
	woff2HeaderSize        = 48

	// nullTransform marks glyf and loca as stored untransformed.
	nullTransform = 3
	customTag     = 63
)

// woff2KnownTags are the tags with a one byte index in the WOFF2 directory.
var woff2KnownTags = []string{
	"cmap", "head", "hhea", "hmtx", "maxp", "name", "OS/2", "post",
	"cvt ", "fpgm", "glyf", "loca", "prep", "CFF ", "VORG", "EBDT",
	"EBLC", "gasp", "hdmx", "kern", "LTSH", "PCLT", "VDMX", "vhea",
	"vmtx", "BASE", "GDEF", "GPOS", "GSUB", "EBSC", "JSTF", "MATH",
	"CBDT", "CBLC", "COLR", "CPAL", "SVG ", "sbix", "acnt", "avar",
	"bdat", "bloc", "bsln", "cvar", "fdsc", "feat", "fmtx", "fvar",
	"gvar", "hsty", "just", "lcar", "mort", "morx", "opbd", "prop",
	"trak", "Zapf", "Silf", "Glat", "Gloc", "Feat", "Sill",
}

func knownTagIndex(tag string) int {
	for i, t := range woff2KnownTags {
		if t == tag {
			return i
		}
	}
	return customTag
}

// ToWOFF2 wraps f as WOFF2. Tables are stored without the glyf/loca
// transforms and compressed as one brotli stream.
func ToWOFF2(f *Font) ([]byte, error) {
	l, err := layout(f)
	if err != nil {
		return nil, err
	}
	tables := woff2Order(l.font.Tables)

	var dir bytes.Buffer
	var stream bytes.Buffer
	for _, t := range tables {
		idx := knownTagIndex(t.Tag)
		flags := byte(idx)
		if t.Tag == "glyf" || t.Tag == "loca" {
			flags |= nullTransform << 6
		}
		dir.WriteByte(flags)
		if idx == customTag {
			dir.Write(tagBytes(t.Tag))
		}
		dir.Write(appendUIntBase128(nil, uint32(len(t.Data))))
		stream.Write(t.Data)
	}

	var compressed bytes.Buffer
	bw := brotli.NewWriterLevel(&compressed, brotli.BestCompression)
	if _, err := bw.Write(stream.Bytes()); err != nil {
		return nil, fmt.Errorf("brotli: %w", err)
	}
	if err := bw.Close(); err != nil {
		return nil, fmt.Errorf("brotli: %w", err)
	}

	size := pad4(woff2HeaderSize + dir.Len() + compressed.Len())
	out := make([]byte, size)
	binary.BigEndian.PutUint32(out, woff2Signature)
	binary.BigEndian.PutUint32(out[4:], l.font.Version)
	binary.BigEndian.PutUint32(out[8:], uint32(size))
	binary.BigEndian.PutUint16(out[12:], uint16(len(tables)))
	binary.BigEndian.PutUint32(out[16:], uint32(l.size))
	binary.BigEndian.PutUint32(out[20:], uint32(compressed.Len()))
	binary.BigEndian.PutUint16(out[24:], 1)
	copy(out[woff2HeaderSize:], dir.Bytes())
	copy(out[woff2HeaderSize+dir.Len():], compressed.Bytes())
	return out, nil
}

// woff2Order keeps tag order but moves loca directly behind glyf.
func woff2Order(tables []Table) []Table {
	out := make([]Table, 0, len(tables))
	var loca *Table
	for i := range tables {
		if tables[i].Tag == "loca" {
			loca = &tables[i]
		}
	}
	for _, t := range tables {
		if t.Tag == "loca" && hasTag(tables, "glyf") {
			continue
		}
		out = append(out, t)
		if t.Tag == "glyf" && loca != nil {
			out = append(out, *loca)
		}
	}
	return out
}

func hasTag(tables []Table, tag string) bool {
	for _, t := range tables {
		if t.Tag == tag {
			return true
		}
	}
	return false
}

// appendUIntBase128 encodes v in the WOFF2 variable length format.
func appendUIntBase128(dst []byte, v uint32) []byte {
	var tmp [5]byte
	i := len(tmp) - 1
	tmp[i] = byte(v & 0x7f)
	for v >>= 7; v != 0; v >>= 7 {
		i--
		tmp[i] = byte(v&0x7f) | 0x80
	}
	return append(dst, tmp[i:]...)
}
