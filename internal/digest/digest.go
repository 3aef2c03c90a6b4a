// Package digest provides the content-hashing collaborator used by content
// comparison and duplicate detection. The algorithm is selectable; digests
// are hex-encoded strings computed over a fixed-size read buffer.
package digest

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"github.com/vvka-141/fstage/pkg/fstage"
)

// Algorithm identifies a supported hash algorithm.
type Algorithm string

const (
	MD5    Algorithm = "md5"
	SHA1   Algorithm = "sha-1"
	SHA256 Algorithm = "sha-256"
)

// Default is the algorithm used when none is configured.
const Default = SHA256

// Supported returns the list of supported hash algorithm identifiers.
func Supported() []string {
	return []string{string(MD5), string(SHA1), string(SHA256)}
}

// Calculator computes content digests.
// Implementations are safe for sequential reuse; each Sum call streams the
// reader through a fresh hash state.
type Calculator interface {
	// Algorithm returns the identifier of the algorithm in use.
	Algorithm() Algorithm

	// Sum consumes the reader and returns the hex-encoded digest.
	Sum(r io.Reader) (string, error)
}

type calculator struct {
	algo    Algorithm
	newHash func() hash.Hash
}

// New creates a Calculator for the given algorithm.
// Unknown algorithms are rejected with fstage.ErrInvalidArgument.
func New(algo Algorithm) (Calculator, error) {
	switch algo {
	case MD5:
		return &calculator{algo: algo, newHash: md5.New}, nil
	case SHA1:
		return &calculator{algo: algo, newHash: sha1.New}, nil
	case SHA256:
		return &calculator{algo: algo, newHash: sha256.New}, nil
	default:
		return nil, fmt.Errorf("%w: unknown digest algorithm %q (supported: %v)", fstage.ErrInvalidArgument, algo, Supported())
	}
}

func (c *calculator) Algorithm() Algorithm {
	return c.algo
}

func (c *calculator) Sum(r io.Reader) (string, error) {
	h := c.newHash()
	buf := make([]byte, fstage.DefaultReadBufferSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
