package image

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
)

var (
	ErrBadMagic           = errors.New("image: bad magic")
	ErrUnsupportedVersion = errors.New("image: unsupported version")
	ErrDigestMismatch     = errors.New("image: digest mismatch")
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("image: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// IsImage reports whether data starts with the image magic.
func IsImage(data []byte) bool {
	return bytes.HasPrefix(data, Magic[:])
}

// Encode serializes img. The digest is recomputed from img.Code, and the
// code is zstd-compressed when img.Compressed is set. img is not modified.
func Encode(img *Image) ([]byte, error) {
	rec := *img
	rec.Version = Version
	rec.Digest = Sum(img.Code)
	if rec.Compressed {
		z, err := compressZstd(img.Code)
		if err != nil {
			return nil, fmt.Errorf("image: compress: %w", err)
		}
		rec.Code = z
	}

	body, err := cborEncMode.Marshal(&rec)
	if err != nil {
		return nil, fmt.Errorf("image: marshal: %w", err)
	}
	return append(Magic[:len(Magic):len(Magic)], body...), nil
}

// Decode parses an encoded image and returns it with plain code. The
// digest is checked after decompression.
func Decode(data []byte) (*Image, error) {
	if !IsImage(data) {
		return nil, ErrBadMagic
	}

	var img Image
	if err := cbor.Unmarshal(data[len(Magic):], &img); err != nil {
		return nil, fmt.Errorf("image: unmarshal: %w", err)
	}
	if img.Version == 0 || img.Version > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, img.Version)
	}

	if img.Compressed {
		code, err := decompressZstd(img.Code)
		if err != nil {
			return nil, fmt.Errorf("image: decompress: %w", err)
		}
		img.Code = code
	}
	if !img.Verify() {
		return nil, ErrDigestMismatch
	}
	return &img, nil
}

// WriteFile encodes img to path.
func WriteFile(path string, img *Image) error {
	data, err := Encode(img)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("image: write %s: %w", path, err)
	}
	return nil
}

// ReadFile decodes the image stored at path.
func ReadFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("image: read %s: %w", path, err)
	}
	return Decode(data)
}

// compressZstd compresses data using zstd.
func compressZstd(data []byte) ([]byte, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	defer encoder.Close()
	return encoder.EncodeAll(data, nil), nil
}

// decompressZstd decompresses zstd-compressed data.
func decompressZstd(data []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer decoder.Close()
	return decoder.DecodeAll(data, nil)
}
