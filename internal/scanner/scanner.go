// Package scanner checks a window of candidates for a digest with a trailing
// run of zeros.
package scanner

import (
	"math"
	"strconv"

	"github.com/steveyegge/tailzero/internal/digest"
	"github.com/steveyegge/tailzero/internal/types"
)

// candidateLimit is one past the largest representable candidate
const candidateLimit = uint64(math.MaxUint32) + 1

// Scan hashes the decimal form of every candidate in window, in increasing
// order, and returns the first one whose digest ends with at least zeroCount
// '0' characters. It has no side effects: the same window, zeroCount and
// hasher always give the same answer.
//
// A zeroCount longer than the digest never matches; the window is still
// walked to its end and Scan reports no match.
func Scan(window types.ScanWindow, zeroCount int, h digest.Hasher) (types.Match, bool) {
	end := window.End
	if end > candidateLimit {
		end = candidateLimit
	}

	var buf [20]byte
	for c := window.Start; c < end; c++ {
		sum := h.HexDigest(string(strconv.AppendUint(buf[:0], c, 10)))
		if HasTrailingZeros(sum, zeroCount) {
			return types.Match{Candidate: uint32(c), Digest: sum}, true
		}
	}
	return types.Match{}, false
}

// HasTrailingZeros reports whether the last n characters of s are all '0'.
// It is false when s is shorter than n.
func HasTrailingZeros(s string, n int) bool {
	if n > len(s) {
		return false
	}
	for i := len(s) - n; i < len(s); i++ {
		if s[i] != '0' {
			return false
		}
	}
	return true
}

// TrailingZeros counts the '0' characters at the end of s
func TrailingZeros(s string) int {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '0'; i-- {
		n++
	}
	return n
}
