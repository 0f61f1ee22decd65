package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunVerify(t *testing.T) {
	tests := []struct {
		name      string
		arg       string
		zeroCount int
		algorithm string
		wantOK    bool
		wantLine  string
	}{
		{
			name:      "three zeros",
			arg:       "4163",
			zeroCount: 3,
			algorithm: "sha256",
			wantOK:    true,
			wantLine:  "4163, 95d4362bd3cd4315d0bbe38dfa5d7fb8f0aed5f1a31d98d510907279194e3000",
		},
		{
			name:      "more zeros than present",
			arg:       "4163",
			zeroCount: 4,
			algorithm: "sha256",
			wantOK:    false,
			wantLine:  "4163, 95d4362bd3cd4315d0bbe38dfa5d7fb8f0aed5f1a31d98d510907279194e3000",
		},
		{
			name:      "zero count always satisfied",
			arg:       "1",
			zeroCount: 0,
			algorithm: "",
			wantOK:    true,
			wantLine:  "1, 6b86b273ff34fce19d6b804eff5a3f5747ada4eaa22f1d49c01e52ddb7875b4b",
		},
		{
			name:      "leading zeros are canonicalized",
			arg:       "00403",
			zeroCount: 2,
			algorithm: "SHA256",
			wantOK:    true,
			wantLine:  "403, d26eae87829adde551bf4b852f9da6b8c3c2db9b65b8b68870632a2db5f53e00",
		},
		{
			name:      "other algorithm",
			arg:       "403",
			zeroCount: 2,
			algorithm: "blake2b",
			wantOK:    false,
			wantLine:  "403, 8b5a1f3fcf464ce3ea95eb9a44c99133f96c8a0e271d0668c319f548215cf431",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			ok, err := runVerify(&out, tt.arg, tt.zeroCount, tt.algorithm)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Contains(t, out.String(), tt.wantLine+"\n")
		})
	}
}

func TestRunVerify_Errors(t *testing.T) {
	tests := []struct {
		name      string
		arg       string
		zeroCount int
		algorithm string
	}{
		{"not a number", "abc", 1, "sha256"},
		{"negative candidate", "-5", 1, "sha256"},
		{"beyond 32 bits", "4294967296", 1, "sha256"},
		{"negative zero count", "10", -1, "sha256"},
		{"unknown algorithm", "10", 1, "md5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runVerify(&bytes.Buffer{}, tt.arg, tt.zeroCount, tt.algorithm)
			assert.Error(t, err)
		})
	}
}

func TestRunVerify_ReportsZeroRun(t *testing.T) {
	var out bytes.Buffer
	ok, err := runVerify(&out, "4163", 2, "sha256")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), "✓ sha256 digest ends with 3 zeros (need 2)")
}
