// Package assetloader reads shader presets, shader sources and LUT images
// from plain files or from the first matching member of a ZIP, 7z, gzip,
// tar.gz or RAR archive.
package assetloader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Magic bytes for format detection
var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06} // empty zip
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
)

// MaxAssetSize caps the decompressed size of a single asset.
const MaxAssetSize = 16 * 1024 * 1024

var (
	// ErrNoAsset is returned when an archive holds no member with a wanted extension.
	ErrNoAsset = errors.New("assetloader: no matching file in archive")

	// ErrUnsupportedFormat is returned for files that are neither an archive
	// nor carry a wanted extension.
	ErrUnsupportedFormat = errors.New("assetloader: unsupported file format")

	// ErrFileTooLarge is returned when an asset exceeds MaxAssetSize.
	ErrFileTooLarge = errors.New("assetloader: file exceeds maximum size")
)

// Format is the container an asset was read from.
type Format int

const (
	FormatUnknown Format = iota
	FormatRaw
	FormatZIP
	Format7z
	FormatGzip
	FormatRAR
)

func (f Format) String() string {
	switch f {
	case FormatRaw:
		return "raw"
	case FormatZIP:
		return "zip"
	case Format7z:
		return "7z"
	case FormatGzip:
		return "gzip"
	case FormatRAR:
		return "rar"
	default:
		return "unknown"
	}
}

// Asset is a loaded file.
type Asset struct {
	Name   string // base name of the file or archive member
	Data   []byte
	Format Format
}

// memberFunc is called for every regular file in an archive. Returning
// true stops the walk.
type memberFunc func(name string, r io.Reader) (bool, error)

// Load reads path. Archives are detected by magic bytes first and then by
// extension; the first member whose name ends in one of extensions is
// returned. A plain file is returned when its own extension is wanted.
func Load(path string, extensions []string) (Asset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Asset{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	header := make([]byte, 16)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return Asset{}, fmt.Errorf("failed to read file header: %w", err)
	}
	header = header[:n]

	format := DetectFormat(header, path, extensions)
	if format == FormatRaw {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return Asset{}, fmt.Errorf("failed to seek file: %w", err)
		}
		data, err := limitedRead(f)
		if err != nil {
			return Asset{}, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
		}
		return Asset{Name: filepath.Base(path), Data: data, Format: FormatRaw}, nil
	}

	var walk func(string, memberFunc) error
	switch format {
	case FormatZIP:
		walk = walkZIP
	case Format7z:
		walk = walk7z
	case FormatGzip:
		walk = walkGzip
	case FormatRAR:
		walk = walkRAR
	default:
		return Asset{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	asset := Asset{Format: format}
	found := false
	err = walk(path, func(name string, r io.Reader) (bool, error) {
		if !HasExtension(name, extensions) {
			return false, nil
		}
		data, err := limitedRead(r)
		if err != nil {
			return true, fmt.Errorf("failed to read %s from %s: %w", name, format, err)
		}
		asset.Name = filepath.Base(name)
		asset.Data = data
		found = true
		return true, nil
	})
	if err != nil {
		return Asset{}, err
	}
	if !found {
		return Asset{}, ErrNoAsset
	}
	return asset, nil
}

// DetectFormat determines the container of a file from its first bytes,
// falling back to its name.
func DetectFormat(header []byte, path string, extensions []string) Format {
	switch {
	case bytes.HasPrefix(header, magicZIP), bytes.HasPrefix(header, magicZIPEnd):
		return FormatZIP
	case bytes.HasPrefix(header, magicRAR):
		return FormatRAR
	case bytes.HasPrefix(header, magic7z):
		return Format7z
	case bytes.HasPrefix(header, magicGzip):
		return FormatGzip
	}

	lower := strings.ToLower(path)
	switch filepath.Ext(lower) {
	case ".zip":
		return FormatZIP
	case ".7z":
		return Format7z
	case ".gz", ".tgz":
		return FormatGzip
	case ".rar":
		return FormatRAR
	}

	if HasExtension(lower, extensions) {
		return FormatRaw
	}
	return FormatUnknown
}

// HasExtension reports whether name ends in one of extensions, ignoring case.
func HasExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// limitedRead reads from r up to MaxAssetSize bytes, returning an error if exceeded
func limitedRead(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxAssetSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxAssetSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
