package fontconv

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nameTable(records map[uint16]string) []byte {
	ids := []uint16{NameFamily, NameSubfamily, NameFullName, NameVersion}

	var strs bytes.Buffer
	var recs bytes.Buffer
	count := 0
	for _, id := range ids {
		s, ok := records[id]
		if !ok {
			continue
		}
		enc, err := utf16BE.NewEncoder().Bytes([]byte(s))
		if err != nil {
			panic(err)
		}
		for _, v := range []uint16{platformWindows, 1, windowsEnglishUS, id, uint16(len(enc)), uint16(strs.Len())} {
			_ = binary.Write(&recs, binary.BigEndian, v)
		}
		strs.Write(enc)
		count++
	}
	var out bytes.Buffer
	_ = binary.Write(&out, binary.BigEndian, uint16(0))
	_ = binary.Write(&out, binary.BigEndian, uint16(count))
	_ = binary.Write(&out, binary.BigEndian, uint16(nameHeaderSize+count*nameRecordSize))
	out.Write(recs.Bytes())
	out.Write(strs.Bytes())
	return out.Bytes()
}

func testFont(t *testing.T, version uint32) *Font {
	t.Helper()
	head := make([]byte, 54)
	binary.BigEndian.PutUint32(head, 0x00010000)
	binary.BigEndian.PutUint32(head[12:], 0x5F0F3CF5)

	os2 := make([]byte, 96)
	binary.BigEndian.PutUint16(os2[os2WeightClass:], 700)
	binary.BigEndian.PutUint16(os2[os2FsType:], 8)
	copy(os2[os2Panose:], []byte{2, 11, 6, 4, 2, 2, 2, 2, 2, 4})
	binary.BigEndian.PutUint32(os2[os2UnicodeRange:], 0xE00002FF)
	binary.BigEndian.PutUint16(os2[os2FsSelection:], os2ItalicBit)
	binary.BigEndian.PutUint32(os2[os2CodePageRange:], 0x0000019F)

	glyf := bytes.Repeat([]byte{0, 1, 0, 0, 0, 0, 0, 0, 0, 10, 0, 10}, 40)
	f := &Font{Version: version, Tables: []Table{
		{Tag: "head", Data: head},
		{Tag: "OS/2", Data: os2},
		{Tag: "name", Data: nameTable(map[uint16]string{
			NameFamily:    "Test Sans",
			NameSubfamily: "Bold Italic",
			NameFullName:  "Test Sans Bold Italic",
			NameVersion:   "Version 1.000",
		})},
		{Tag: "glyf", Data: glyf},
		{Tag: "loca", Data: []byte{0, 0, 0, 6, 0, 12}},
		{Tag: "maxp", Data: []byte{0, 1, 0, 0, 0, 2}},
		{Tag: "cmap", Data: []byte{0, 0, 0, 0}},
		{Tag: "ZZZZ", Data: []byte("custom table")},
	}}
	f.sortTables()
	return f
}

func assertSameTables(t *testing.T, want, got *Font) {
	t.Helper()
	require.Len(t, got.Tables, len(want.Tables))
	for i, wt := range want.Tables {
		assert.Equal(t, wt.Tag, got.Tables[i].Tag)
		if wt.Tag == "head" {
			assert.Equal(t, wt.Data[:8], got.Tables[i].Data[:8])
			assert.Equal(t, wt.Data[12:], got.Tables[i].Data[12:])
			continue
		}
		assert.Equal(t, wt.Data, got.Tables[i].Data, wt.Tag)
	}
}

func TestSFNTRoundTrip(t *testing.T) {
	f := testFont(t, VersionTrueType)
	data := f.SFNT()
	assert.Equal(t, FormatTrueType, Detect(data))
	assert.Zero(t, len(data)%4)

	g, err := ParseSFNT(data)
	require.NoError(t, err)
	assertSameTables(t, f, g)
	assert.Equal(t, ".ttf", g.Extension())

	// The whole-font checksum including the adjustment equals the magic value.
	assert.Equal(t, uint32(checksumMagic), checksum(data))
}

func TestSortedTagsAreBinaryOrdered(t *testing.T) {
	f := testFont(t, VersionTrueType)
	var tags []string
	for _, tb := range f.Tables {
		tags = append(tags, tb.Tag)
	}
	assert.Equal(t, []string{"OS/2", "ZZZZ", "cmap", "glyf", "head", "loca", "maxp", "name"}, tags)
}

func TestWOFFRoundTrip(t *testing.T) {
	f := testFont(t, VersionTrueType)
	data, err := ToWOFF(f)
	require.NoError(t, err)
	assert.Equal(t, FormatWOFF, Detect(data))
	assert.Equal(t, uint32(len(data)), binary.BigEndian.Uint32(data[8:]))
	assert.Equal(t, uint32(len(f.SFNT())), binary.BigEndian.Uint32(data[16:]))

	g, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, VersionTrueType, g.Version)
	assertSameTables(t, f, g)
}

func TestWOFF2RoundTrip(t *testing.T) {
	f := testFont(t, VersionTrueType)
	data, err := ToWOFF2(f)
	require.NoError(t, err)
	assert.Equal(t, FormatWOFF2, Detect(data))
	assert.Zero(t, len(data)%4)
	assert.Equal(t, uint32(len(data)), binary.BigEndian.Uint32(data[8:]))
	assert.Equal(t, uint16(len(f.Tables)), binary.BigEndian.Uint16(data[12:]))

	g, err := Decode(data)
	require.NoError(t, err)
	assertSameTables(t, f, g)
}

func TestWOFF2DirectoryKeepsLocaAfterGlyf(t *testing.T) {
	order := woff2Order(testFont(t, VersionTrueType).Tables)
	var tags []string
	for _, tb := range order {
		tags = append(tags, tb.Tag)
	}
	assert.Equal(t, []string{"OS/2", "ZZZZ", "cmap", "glyf", "loca", "head", "maxp", "name"}, tags)
}

func TestWOFF2KnownTags(t *testing.T) {
	assert.Len(t, woff2KnownTags, 63)
	assert.Equal(t, 0, knownTagIndex("cmap"))
	assert.Equal(t, 10, knownTagIndex("glyf"))
	assert.Equal(t, 62, knownTagIndex("Sill"))
	assert.Equal(t, customTag, knownTagIndex("ZZZZ"))
}

func TestUIntBase128(t *testing.T) {
	tests := []struct {
		v    uint32
		want []byte
	}{
		{0, []byte{0x00}},
		{63, []byte{0x3F}},
		{127, []byte{0x7F}},
		{128, []byte{0x81, 0x00}},
		{16383, []byte{0xFF, 0x7F}},
		{16384, []byte{0x81, 0x80, 0x00}},
		{0xFFFFFFFF, []byte{0x8F, 0xFF, 0xFF, 0xFF, 0x7F}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, appendUIntBase128(nil, tt.v), tt.v)
	}
}

func TestEOTRoundTrip(t *testing.T) {
	f := testFont(t, VersionTrueType)
	data, err := ToEOT(f)
	require.NoError(t, err)
	assert.Equal(t, FormatEOT, Detect(data))

	le := binary.LittleEndian
	assert.Equal(t, uint32(len(data)), le.Uint32(data))
	assert.Equal(t, eotVersion, le.Uint32(data[8:]))
	assert.Equal(t, []byte{2, 11, 6, 4, 2, 2, 2, 2, 2, 4}, data[16:26])
	assert.Equal(t, byte(1), data[27], "italic")
	assert.Equal(t, uint32(700), le.Uint32(data[28:]))
	assert.Equal(t, uint16(8), le.Uint16(data[32:]))
	assert.True(t, bytes.Contains(data, utf16LEBytes("Test Sans Bold Italic")))

	g, err := Decode(data)
	require.NoError(t, err)
	assertSameTables(t, f, g)
}

func TestEOTXORDecryption(t *testing.T) {
	f := testFont(t, VersionTrueType)
	data, err := ToEOT(f)
	require.NoError(t, err)

	le := binary.LittleEndian
	size, fontSize := le.Uint32(data), le.Uint32(data[4:])
	le.PutUint32(data[12:], eotFlagXOR)
	for i := size - fontSize; i < size; i++ {
		data[i] ^= eotXORKey
	}

	g, err := ParseEOT(data)
	require.NoError(t, err)
	assertSameTables(t, f, g)

	_, err = ParseEOT(data[:40])
	assert.Error(t, err)
}

func TestEOTRequiresOS2(t *testing.T) {
	f := &Font{Version: VersionTrueType, Tables: []Table{{Tag: "head", Data: make([]byte, 54)}}}
	_, err := ToEOT(f)
	assert.Error(t, err)
}

func TestNames(t *testing.T) {
	f := testFont(t, VersionTrueType)
	assert.Equal(t, "Test Sans", f.Name(NameFamily))
	assert.Equal(t, "Version 1.000", f.Name(NameVersion))
	assert.Equal(t, "", f.Name(6))
}

func TestEncodeCFFAsTrueTypeFails(t *testing.T) {
	f := testFont(t, VersionCFF)
	_, err := Encode(f, FormatTrueType)
	require.Error(t, err)

	data, err := Encode(f, FormatOpenType)
	require.NoError(t, err)
	assert.Equal(t, FormatOpenType, Detect(data))
	assert.Equal(t, ".otf", f.Extension())
}

func TestDetect(t *testing.T) {
	assert.Equal(t, FormatCollection, Detect([]byte("ttcf\x00\x01\x00\x00")))
	assert.Equal(t, FormatSVG, Detect([]byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"><font/></svg>`)))
	assert.Equal(t, FormatUnknown, Detect([]byte("hello")))

	_, err := Decode([]byte("hello"))
	assert.Error(t, err)
}

func TestParseSFNTRejectsGarbage(t *testing.T) {
	_, err := ParseSFNT([]byte{0, 1})
	assert.Error(t, err)
	_, err = ParseSFNT([]byte("abcdefghijklmnop"))
	assert.Error(t, err)

	data := testFont(t, VersionTrueType).SFNT()
	_, err = ParseSFNT(data[:40])
	assert.Error(t, err)
}
