// Package image stores stackvm programs on disk. An image is a CBOR record
// behind a four-byte magic holding the program bytes, an optional name and a
// BLAKE3 digest of the code. The code may be zstd-compressed.
package image

import (
	"github.com/mr-tron/base58"
	"github.com/zeebo/blake3"
)

// Version is the image format version written by Encode.
const Version uint16 = 1

// Magic prefixes every encoded image.
var Magic = [4]byte{'S', 'V', 'M', 'I'}

// Image is a named program with its content digest.
type Image struct {
	Version    uint16   `cbor:"1,keyasint"`
	Name       string   `cbor:"2,keyasint,omitempty"`
	Code       []byte   `cbor:"3,keyasint"`
	Compressed bool     `cbor:"4,keyasint,omitempty"`
	Digest     [32]byte `cbor:"5,keyasint"` // BLAKE3 of the uncompressed code
}

// New returns an uncompressed image of code with its digest filled in.
func New(name string, code []byte) *Image {
	return &Image{
		Version: Version,
		Name:    name,
		Code:    code,
		Digest:  Sum(code),
	}
}

// Sum returns the BLAKE3-256 digest of code.
func Sum(code []byte) [32]byte {
	return blake3.Sum256(code)
}

// DigestString returns the digest in base58.
func (img *Image) DigestString() string {
	return base58.Encode(img.Digest[:])
}

// Verify reports whether the digest matches the code.
func (img *Image) Verify() bool {
	return Sum(img.Code) == img.Digest
}
