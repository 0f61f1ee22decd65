package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/tailzero/internal/types"
)

func drain(p *Planner) []types.ScanWindow {
	var out []types.ScanWindow
	for {
		w, ok := p.Next()
		if !ok {
			return out
		}
		out = append(out, w)
	}
}

func TestPlanner_DefaultWindowsLeaveGap(t *testing.T) {
	p := NewPlanner(1000, false, DefaultDomainMax)

	expected := []types.ScanWindow{
		{Start: 1, End: 1001},
		{Start: 1002, End: 2002},
		{Start: 2003, End: 3003},
	}
	for _, want := range expected {
		got, ok := p.Next()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	assert.False(t, p.Exhausted())
}

func TestPlanner_ContiguousWindows(t *testing.T) {
	p := NewPlanner(1000, true, DefaultDomainMax)

	expected := []types.ScanWindow{
		{Start: 1, End: 1001},
		{Start: 1001, End: 2001},
		{Start: 2001, End: 3001},
	}
	for _, want := range expected {
		got, ok := p.Next()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestPlanner_Coverage(t *testing.T) {
	tests := []struct {
		name       string
		contiguous bool
		wantMissed []uint64
	}{
		{"gap leaves one candidate per window", false, []uint64{11, 22, 33}},
		{"contiguous covers every candidate", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows := drain(NewPlanner(10, tt.contiguous, 40))

			var missed []uint64
			for c := uint64(firstCandidate); c < 40; c++ {
				covering := 0
				for _, w := range windows {
					if w.Contains(c) {
						covering++
					}
				}
				require.LessOrEqual(t, covering, 1, "candidate %d scanned twice", c)
				if covering == 0 {
					missed = append(missed, c)
				}
			}
			assert.Equal(t, tt.wantMissed, missed)
		})
	}
}

func TestPlanner_WindowsDisjointAndIncreasing(t *testing.T) {
	tests := []struct {
		name       string
		step       uint64
		contiguous bool
		domainMax  uint64
		wantGap    uint64
	}{
		{"gap, step 10", 10, false, 1000, 1},
		{"contiguous, step 10", 10, true, 1000, 0},
		{"gap, step 1", 1, false, 50, 1},
		{"contiguous, step 7", 7, true, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows := drain(NewPlanner(tt.step, tt.contiguous, tt.domainMax))
			require.NotEmpty(t, windows)

			seen := make(map[uint64]bool)
			for i, w := range windows {
				assert.Less(t, w.Start, w.End, "window %d is empty", i)
				assert.LessOrEqual(t, w.End, tt.domainMax)
				for c := w.Start; c < w.End; c++ {
					assert.False(t, seen[c], "candidate %d scanned twice", c)
					seen[c] = true
				}
				if i > 0 {
					prev := windows[i-1]
					assert.Greater(t, w.Start, prev.Start)
					assert.Equal(t, prev.End+tt.wantGap, w.Start)
				}
			}
		})
	}
}

func TestPlanner_SaturatesAtDomainMax(t *testing.T) {
	windows := drain(NewPlanner(1000, false, 2505))

	assert.Equal(t, []types.ScanWindow{
		{Start: 1, End: 1001},
		{Start: 1002, End: 2002},
		{Start: 2003, End: 2505},
	}, windows)
}

func TestPlanner_StepLargerThanDomain(t *testing.T) {
	p := NewPlanner(DefaultDomainMax, false, DefaultDomainMax)

	w, ok := p.Next()
	require.True(t, ok)
	assert.Equal(t, types.ScanWindow{Start: 1, End: DefaultDomainMax}, w)

	_, ok = p.Next()
	assert.False(t, ok)
	assert.True(t, p.Exhausted())
}

func TestPlanner_SmallestDomain(t *testing.T) {
	windows := drain(NewPlanner(1000, false, 2))
	assert.Equal(t, []types.ScanWindow{{Start: 1, End: 2}}, windows)
}
