package heightfield

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/klauspost/compress/zstd"
)

// Codec errors.
var (
	ErrInvalidMagic       = errors.New("invalid height field magic: expected 'SHFD'")
	ErrUnsupportedVersion = errors.New("unsupported height field version")
	ErrTruncatedData      = errors.New("truncated height field data")
)

const (
	fileMagic   = "SHFD"
	fileVersion = 1
)

// fileHeader is the fixed little-endian header following magic and version.
type fileHeader struct {
	Resolution  uint32
	ChunkCount  uint32
	MinHeight   float32
	MaxHeight   float32
	CellSpacing float32
	OriginX     float32
	OriginZ     float32
}

// Encode writes f as magic, version, header and a zstd frame of
// Resolution² little-endian float32 heights.
func Encode(w io.Writer, f *Field) error {
	if _, err := io.WriteString(w, fileMagic); err != nil {
		return err
	}
	if _, err := w.Write([]byte{fileVersion}); err != nil {
		return err
	}

	hdr := fileHeader{
		Resolution:  uint32(f.res),
		ChunkCount:  uint32(f.chunkCount),
		MinHeight:   f.minH,
		MaxHeight:   f.maxH,
		CellSpacing: f.spacing,
		OriginX:     f.origin[0],
		OriginZ:     f.origin[1],
	}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return err
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("creating zstd writer: %w", err)
	}
	if err := binary.Write(enc, binary.LittleEndian, f.heights); err != nil {
		enc.Close()
		return fmt.Errorf("writing heights: %w", err)
	}
	return enc.Close()
}

// Decode reads a field written by Encode.
func Decode(r io.Reader) (*Field, error) {
	var prefix [5]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, fmt.Errorf("%w: reading magic", ErrTruncatedData)
	}
	if string(prefix[:4]) != fileMagic {
		return nil, ErrInvalidMagic
	}
	if prefix[4] != fileVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, prefix[4])
	}

	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: reading header", ErrTruncatedData)
	}
	if hdr.Resolution > 1<<14 {
		return nil, fmt.Errorf("%w: resolution %d", ErrInvalidResolution, hdr.Resolution)
	}

	f, err := New(Params{
		Resolution:  int(hdr.Resolution),
		ChunkCount:  int(hdr.ChunkCount),
		MinHeight:   hdr.MinHeight,
		MaxHeight:   hdr.MaxHeight,
		CellSpacing: hdr.CellSpacing,
		Origin:      mgl32.Vec2{hdr.OriginX, hdr.OriginZ},
		Initial:     hdr.MinHeight,
	})
	if err != nil {
		return nil, err
	}

	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("creating zstd reader: %w", err)
	}
	defer dec.Close()

	payload, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decompressing heights: %w", err)
	}
	want := len(f.heights) * 4
	if len(payload) != want {
		return nil, fmt.Errorf("%w: %d bytes of heights, want %d", ErrDimensionMismatch, len(payload), want)
	}

	values := make([]float32, len(f.heights))
	if err := binary.Read(bytes.NewReader(payload), binary.LittleEndian, values); err != nil {
		return nil, fmt.Errorf("%w: reading heights", ErrTruncatedData)
	}
	if err := f.Load(values); err != nil {
		return nil, err
	}
	return f, nil
}

// SaveFile encodes f to path, creating parent directories.
func SaveFile(path string, f *Field) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(file)
	if err := Encode(w, f); err != nil {
		file.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// LoadFile decodes a field from disk.
func LoadFile(path string) (*Field, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading height field: %w", err)
	}
	defer file.Close()
	return Decode(bufio.NewReader(file))
}
