package imageprocessor_test

import (
	"bytes"
	"encoding/binary"
	"image/color"
	"os"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

// writeImage encodes a flat-color image at path; the format follows the file
// extension.
func writeImage(t *testing.T, path string, width, height int) {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{R: 120, G: 160, B: 200, A: 255})
	require.NoError(t, imaging.Save(img, path))
}

// exifEntry is one IFD0 tag for buildEXIFSegment.
type exifEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	value []byte
}

// orientationEntry builds the EXIF orientation tag (SHORT).
func orientationEntry(orientation uint16) exifEntry {
	value := make([]byte, 2)
	binary.LittleEndian.PutUint16(value, orientation)
	return exifEntry{tag: 0x0112, typ: 3, count: 1, value: value}
}

// dateTimeEntry builds the EXIF DateTime tag (ASCII, NUL terminated).
func dateTimeEntry(ts string) exifEntry {
	value := append([]byte(ts), 0x00)
	return exifEntry{tag: 0x0132, typ: 2, count: uint32(len(value)), value: value}
}

// writeJPEGWithEXIF writes a JPEG and splices an EXIF APP1 segment carrying
// the given IFD0 entries right after the SOI marker.
func writeJPEGWithEXIF(t *testing.T, path string, width, height int, entries ...exifEntry) {
	t.Helper()

	writeImage(t, path, width, height)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, len(raw) > 2 && raw[0] == 0xFF && raw[1] == 0xD8, "expected JPEG SOI marker")

	var buf bytes.Buffer
	buf.Write(raw[:2])
	buf.Write(buildEXIFSegment(entries))
	buf.Write(raw[2:])

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

// buildEXIFSegment assembles an APP1 segment with a little-endian TIFF body
// holding one IFD0 with the given entries.
func buildEXIFSegment(entries []exifEntry) []byte {
	var tiffBody bytes.Buffer
	tiffBody.Write([]byte{'I', 'I', 0x2A, 0x00})
	binary.Write(&tiffBody, binary.LittleEndian, uint32(8)) // IFD0 offset

	// Values longer than 4 bytes live behind the IFD and are addressed by
	// offset from the TIFF header.
	ifdSize := 2 + len(entries)*12 + 4
	valueAreaStart := uint32(8 + ifdSize)

	var valueArea bytes.Buffer
	binary.Write(&tiffBody, binary.LittleEndian, uint16(len(entries)))
	for _, e := range entries {
		binary.Write(&tiffBody, binary.LittleEndian, e.tag)
		binary.Write(&tiffBody, binary.LittleEndian, e.typ)
		binary.Write(&tiffBody, binary.LittleEndian, e.count)
		if len(e.value) <= 4 {
			padded := make([]byte, 4)
			copy(padded, e.value)
			tiffBody.Write(padded)
		} else {
			binary.Write(&tiffBody, binary.LittleEndian, valueAreaStart+uint32(valueArea.Len()))
			valueArea.Write(e.value)
		}
	}
	binary.Write(&tiffBody, binary.LittleEndian, uint32(0)) // no next IFD
	tiffBody.Write(valueArea.Bytes())

	payload := append([]byte("Exif\x00\x00"), tiffBody.Bytes()...)
	segment := make([]byte, 0, len(payload)+4)
	segment = append(segment, 0xFF, 0xE1)
	length := uint16(len(payload) + 2)
	segment = append(segment, byte(length>>8), byte(length))
	segment = append(segment, payload...)
	return segment
}
