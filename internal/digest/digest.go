// Package digest supplies the hash functions candidates are checked against.
//
// Every Hasher returns a fixed-length lowercase hex string. A search must use a
// single Hasher for its whole run; mixing algorithms would make the
// trailing-zero check meaningless.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dchest/blake2b"
)

const (
	// SHA256 is the default algorithm and the one the search has always used
	SHA256 = "sha256"

	// Blake2b256 is BLAKE2b with a 32-byte output
	Blake2b256 = "blake2b"
)

// ErrUnknownAlgorithm is returned by Lookup for names with no registered Hasher
var ErrUnknownAlgorithm = errors.New("unknown digest algorithm")

// Hasher computes hex digests of candidate strings
type Hasher interface {
	// Name returns the registry name (e.g., "sha256")
	Name() string

	// HexLen returns the fixed length of every string HexDigest returns
	HexLen() int

	// HexDigest hashes s and returns the lowercase hex encoding
	HexDigest(s string) string
}

type sum256Hasher struct {
	name string
	sum  func([]byte) [32]byte
}

func (h sum256Hasher) Name() string { return h.name }

func (h sum256Hasher) HexLen() int { return hex.EncodedLen(32) }

func (h sum256Hasher) HexDigest(s string) string {
	sum := h.sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

var registry = map[string]Hasher{
	SHA256:     sum256Hasher{name: SHA256, sum: sha256.Sum256},
	Blake2b256: sum256Hasher{name: Blake2b256, sum: blake2b.Sum256},
}

// Default returns the SHA-256 hasher
func Default() Hasher {
	return registry[SHA256]
}

// Lookup returns the Hasher registered under name (case-insensitive).
// An empty name selects the default.
func Lookup(name string) (Hasher, error) {
	if name == "" {
		return Default(), nil
	}
	h, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownAlgorithm, name, strings.Join(Names(), ", "))
	}
	return h, nil
}

// Names returns the registered algorithm names in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
