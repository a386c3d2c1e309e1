package fontconv

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
)

const (
	woffSignature  uint32 = 0x774F4646 // "wOFF"
	woffHeaderSize        = 44
	woffEntrySize         = 20
)

// sfntLayout is the serialised form of a font plus the directory values
// WOFF containers repeat.
type sfntLayout struct {
	font      *Font
	checksums map[string]uint32
	size      int
}

func layout(f *Font) (*sfntLayout, error) {
	data := f.SFNT()
	g, err := ParseSFNT(data)
	if err != nil {
		return nil, err
	}
	l := &sfntLayout{font: g, checksums: make(map[string]uint32, len(g.Tables)), size: len(data)}
	n := int(binary.BigEndian.Uint16(data[4:]))
	for i := 0; i < n; i++ {
		e := data[sfntHeaderSize+i*sfntEntrySize:]
		l.checksums[string(e[:4])] = binary.BigEndian.Uint32(e[4:])
	}
	return l, nil
}

// ToWOFF wraps f as WOFF 1.0, zlib compressing every table that shrinks.
func ToWOFF(f *Font) ([]byte, error) {
	l, err := layout(f)
	if err != nil {
		return nil, err
	}
	tables := l.font.Tables

	payloads := make([][]byte, len(tables))
	for i, t := range tables {
		var buf bytes.Buffer
		zw, _ := zlib.NewWriterLevel(&buf, zlib.BestCompression)
		if _, err := zw.Write(t.Data); err != nil {
			return nil, fmt.Errorf("compress %s: %w", t.Tag, err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("compress %s: %w", t.Tag, err)
		}
		payloads[i] = t.Data
		if buf.Len() < len(t.Data) {
			payloads[i] = buf.Bytes()
		}
	}

	size := woffHeaderSize + len(tables)*woffEntrySize
	for _, p := range payloads {
		size += pad4(len(p))
	}
	out := make([]byte, size)
	binary.BigEndian.PutUint32(out, woffSignature)
	binary.BigEndian.PutUint32(out[4:], l.font.Version)
	binary.BigEndian.PutUint32(out[8:], uint32(size))
	binary.BigEndian.PutUint16(out[12:], uint16(len(tables)))
	binary.BigEndian.PutUint32(out[16:], uint32(l.size))
	binary.BigEndian.PutUint16(out[20:], 1)

	off := woffHeaderSize + len(tables)*woffEntrySize
	for i, t := range tables {
		e := out[woffHeaderSize+i*woffEntrySize:]
		copy(e, tagBytes(t.Tag))
		binary.BigEndian.PutUint32(e[4:], uint32(off))
		binary.BigEndian.PutUint32(e[8:], uint32(len(payloads[i])))
		binary.BigEndian.PutUint32(e[12:], uint32(len(t.Data)))
		binary.BigEndian.PutUint32(e[16:], l.checksums[t.Tag])
		copy(out[off:], payloads[i])
		off += pad4(len(payloads[i]))
	}
	return out, nil
}
