package main

import (
	"testing"
	"time"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		input    uint64
		expected string
	}{
		// Small numbers
		{0, "0"},
		{1, "1"},
		{42, "42"},
		{999, "999"},

		// Thousands
		{1000, "1,000"},
		{1001, "1,001"},
		{99999, "99,999"},
		{999999, "999,999"},

		// Millions
		{1000000, "1,000,000"},
		{1234567, "1,234,567"},

		// Billions
		{1234567890, "1,234,567,890"},
		{4294967295, "4,294,967,295"}, // Max uint32
	}

	for _, tt := range tests {
		result := formatNumber(tt.input)
		if result != tt.expected {
			t.Errorf("formatNumber(%d) = %s; want %s", tt.input, result, tt.expected)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		input    time.Duration
		expected string
	}{
		{500 * time.Microsecond, "500µs"},
		{123456 * time.Microsecond, "123.5ms"},
		{1234 * time.Millisecond, "1.23s"},
		{90*time.Second + 400*time.Millisecond, "1m30s"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.input); got != tt.expected {
			t.Errorf("formatDuration(%v) = %s; want %s", tt.input, got, tt.expected)
		}
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago      time.Duration
		expected string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{50 * time.Hour, "2d ago"},
	}

	for _, tt := range tests {
		if got := formatAge(now.Add(-tt.ago), now); got != tt.expected {
			t.Errorf("formatAge(-%v) = %s; want %s", tt.ago, got, tt.expected)
		}
	}
}
