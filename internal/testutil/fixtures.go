// Package testutil builds on-disk media fixtures for tests: real JPEG
// streams and minimal TIFF/EXIF blocks shaped like camera output.
package testutil

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

// JPEG encodes a w×h gradient as a baseline JPEG.
func JPEG(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// Exif describes the tags written by TIFF and JPEGWithExif.
type Exif struct {
	Make         string
	Model        string
	ISO          uint16
	FNumber      [2]uint32 // numerator, denominator
	ExposureTime [2]uint32
	DateTime     string // "2006:01:02 15:04:05"
}

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

const (
	typeASCII    = 2
	typeShort    = 3
	typeLong     = 4
	typeRational = 5
)

var le = binary.LittleEndian

func ascii(tag uint16, s string) ifdEntry {
	b := append([]byte(s), 0)
	return ifdEntry{tag: tag, typ: typeASCII, count: uint32(len(b)), data: b}
}

func rational(tag uint16, v [2]uint32) ifdEntry {
	b := le.AppendUint32(nil, v[0])
	b = le.AppendUint32(b, v[1])
	return ifdEntry{tag: tag, typ: typeRational, count: 1, data: b}
}

// TIFF returns a little-endian TIFF stream with IFD0 (Make, Model) and an
// EXIF sub-IFD, the layout TIFF-based RAW formats start with.
func TIFF(e Exif) []byte {
	var ifd0, sub []ifdEntry
	if e.Make != "" {
		ifd0 = append(ifd0, ascii(0x010F, e.Make))
	}
	if e.Model != "" {
		ifd0 = append(ifd0, ascii(0x0110, e.Model))
	}
	if e.ExposureTime[1] != 0 {
		sub = append(sub, rational(0x829A, e.ExposureTime))
	}
	if e.FNumber[1] != 0 {
		sub = append(sub, rational(0x829D, e.FNumber))
	}
	if e.ISO != 0 {
		sub = append(sub, ifdEntry{tag: 0x8827, typ: typeShort, count: 1, data: le.AppendUint16(nil, e.ISO)})
	}
	if e.DateTime != "" {
		sub = append(sub, ascii(0x9003, e.DateTime))
	}

	const off0 = 8
	n0 := len(ifd0) + 1
	off1 := off0 + 2 + 12*n0 + 4
	dataOff := off1 + 2 + 12*len(sub) + 4
	var data []byte

	writeIFD := func(entries []ifdEntry) []byte {
		b := le.AppendUint16(nil, uint16(len(entries)))
		for _, en := range entries {
			b = le.AppendUint16(b, en.tag)
			b = le.AppendUint16(b, en.typ)
			b = le.AppendUint32(b, en.count)
			if len(en.data) <= 4 {
				v := make([]byte, 4)
				copy(v, en.data)
				b = append(b, v...)
				continue
			}
			b = le.AppendUint32(b, uint32(dataOff+len(data)))
			data = append(data, en.data...)
			if len(data)%2 == 1 {
				data = append(data, 0)
			}
		}
		return le.AppendUint32(b, 0)
	}

	ptr := ifdEntry{tag: 0x8769, typ: typeLong, count: 1, data: le.AppendUint32(nil, uint32(off1))}
	out := []byte("II*\x00")
	out = le.AppendUint32(out, off0)
	out = append(out, writeIFD(append(ifd0, ptr))...)
	out = append(out, writeIFD(sub)...)
	return append(out, data...)
}

// JPEGWithExif inserts an APP1 EXIF segment carrying e right after the SOI
// marker of img.
func JPEGWithExif(img []byte, e Exif) []byte {
	payload := append([]byte("Exif\x00\x00"), TIFF(e)...)
	seg := []byte{0xFF, 0xE1, byte((len(payload) + 2) >> 8), byte(len(payload) + 2)}
	out := append([]byte{}, img[:2]...)
	out = append(out, seg...)
	out = append(out, payload...)
	return append(out, img[2:]...)
}

// FakeRAW wraps preview, a JPEG, inside a TIFF-shaped container padded with
// sensor-like filler, mimicking how camera RAW files embed their previews.
func FakeRAW(e Exif, preview []byte) []byte {
	out := TIFF(e)
	out = append(out, bytes.Repeat([]byte{0x5A}, 512)...)
	out = append(out, preview...)
	return append(out, bytes.Repeat([]byte{0xA5}, 256)...)
}

// WriteFile writes data to dir/name and returns the full path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}
