// Package phototest builds small image files with embedded EXIF blocks for tests.
package phototest

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"sort"
)

// EXIF/TIFF tag ids used by the builders.
const (
	tagExifIFDPointer   = 0x8769
	tagGPSInfoIFD       = 0x8825
	tagDateTimeOriginal = 0x9003
	tagGPSLatitudeRef   = 0x0001
	tagGPSLatitude      = 0x0002
	tagGPSLongitudeRef  = 0x0003
	tagGPSLongitude     = 0x0004

	typeASCII    = 2
	typeLong     = 4
	typeRational = 5
)

// Rational is a numerator/denominator pair.
type Rational [2]uint32

// DMS is a degrees/minutes/seconds triple with its hemisphere reference.
// When Text is set the value is stored as an ASCII string such as
// "52,50,34" instead of three rationals, as some phones do.
type DMS struct {
	Ref     string
	Degrees Rational
	Minutes Rational
	Seconds Rational
	Text    string
}

// Exif describes the tags to embed. Empty fields are left out.
type Exif struct {
	DateTimeOriginal string
	Latitude         *DMS
	Longitude        *DMS
}

type entry struct {
	tag   uint16
	typ   uint16
	count uint32
	value []byte
}

// TIFF returns a big-endian TIFF block holding the tags of e.
func TIFF(e Exif) []byte {
	var exifIFD, gpsIFD []entry
	if e.DateTimeOriginal != "" {
		exifIFD = append(exifIFD, ascii(tagDateTimeOriginal, e.DateTimeOriginal))
	}
	if e.Latitude != nil {
		gpsIFD = append(gpsIFD, ascii(tagGPSLatitudeRef, e.Latitude.Ref), rational(tagGPSLatitude, e.Latitude))
	}
	if e.Longitude != nil {
		gpsIFD = append(gpsIFD, ascii(tagGPSLongitudeRef, e.Longitude.Ref), rational(tagGPSLongitude, e.Longitude))
	}

	ifd0Count := 0
	if exifIFD != nil {
		ifd0Count++
	}
	if gpsIFD != nil {
		ifd0Count++
	}

	const headerLen = 8
	next := uint32(headerLen + ifdLen(ifd0Count, nil))

	var ifd0 []entry
	if exifIFD != nil {
		ifd0 = append(ifd0, long(tagExifIFDPointer, next))
		next += uint32(ifdLen(len(exifIFD), exifIFD))
	}
	if gpsIFD != nil {
		ifd0 = append(ifd0, long(tagGPSInfoIFD, next))
	}

	buf := new(bytes.Buffer)
	buf.WriteString("MM\x00\x2a")
	_ = binary.Write(buf, binary.BigEndian, uint32(headerLen))
	writeIFD(buf, ifd0)
	if exifIFD != nil {
		writeIFD(buf, exifIFD)
	}
	if gpsIFD != nil {
		writeIFD(buf, gpsIFD)
	}
	return buf.Bytes()
}

// JPEG returns a minimal JPEG stream. A nil e produces a file without an APP1 segment.
func JPEG(e *Exif) []byte {
	buf := new(bytes.Buffer)
	buf.Write([]byte{0xff, 0xd8})
	if e != nil {
		payload := append([]byte("Exif\x00\x00"), TIFF(*e)...)
		buf.Write([]byte{0xff, 0xe1})
		_ = binary.Write(buf, binary.BigEndian, uint16(len(payload)+2))
		buf.Write(payload)
	}
	buf.Write([]byte{0xff, 0xd9})
	return buf.Bytes()
}

// PNG returns a PNG stream with an IHDR chunk and, when e is set, an eXIf chunk.
func PNG(e *Exif) []byte {
	buf := new(bytes.Buffer)
	buf.WriteString("\x89PNG\r\n\x1a\n")

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], 1)
	binary.BigEndian.PutUint32(ihdr[4:], 1)
	ihdr[8] = 8
	ihdr[9] = 2
	writeChunk(buf, "IHDR", ihdr)
	if e != nil {
		writeChunk(buf, "eXIf", TIFF(*e))
	}
	writeChunk(buf, "IEND", nil)
	return buf.Bytes()
}

// GIF returns a GIF header with no metadata.
func GIF() []byte {
	return []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
}

func writeChunk(buf *bytes.Buffer, kind string, data []byte) {
	_ = binary.Write(buf, binary.BigEndian, uint32(len(data)))
	crc := crc32.NewIEEE()
	crc.Write([]byte(kind))
	crc.Write(data)
	buf.WriteString(kind)
	buf.Write(data)
	_ = binary.Write(buf, binary.BigEndian, crc.Sum32())
}

func ascii(tag uint16, s string) entry {
	v := append([]byte(s), 0)
	return entry{tag: tag, typ: typeASCII, count: uint32(len(v)), value: v}
}

func long(tag uint16, v uint32) entry {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return entry{tag: tag, typ: typeLong, count: 1, value: b}
}

func rational(tag uint16, d *DMS) entry {
	if d.Text != "" {
		return ascii(tag, d.Text)
	}
	b := make([]byte, 0, 24)
	for _, r := range []Rational{d.Degrees, d.Minutes, d.Seconds} {
		b = binary.BigEndian.AppendUint32(b, r[0])
		b = binary.BigEndian.AppendUint32(b, r[1])
	}
	return entry{tag: tag, typ: typeRational, count: 3, value: b}
}

// ifdLen is the encoded size of an IFD including its out-of-line values.
func ifdLen(n int, entries []entry) int {
	size := 2 + 12*n + 4
	for _, e := range entries {
		if len(e.value) > 4 {
			size += padded(len(e.value))
		}
	}
	return size
}

func padded(n int) int {
	return n + n%2
}

func writeIFD(buf *bytes.Buffer, entries []entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })

	start := buf.Len()
	dataOff := uint32(start + 2 + 12*len(entries) + 4)

	_ = binary.Write(buf, binary.BigEndian, uint16(len(entries)))
	var data []byte
	for _, e := range entries {
		_ = binary.Write(buf, binary.BigEndian, e.tag)
		_ = binary.Write(buf, binary.BigEndian, e.typ)
		_ = binary.Write(buf, binary.BigEndian, e.count)
		if len(e.value) <= 4 {
			inline := make([]byte, 4)
			copy(inline, e.value)
			buf.Write(inline)
			continue
		}
		_ = binary.Write(buf, binary.BigEndian, dataOff+uint32(len(data)))
		data = append(data, e.value...)
		if len(e.value)%2 == 1 {
			data = append(data, 0)
		}
	}
	_ = binary.Write(buf, binary.BigEndian, uint32(0))
	buf.Write(data)
}
