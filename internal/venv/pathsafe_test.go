package venv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSafeSegment(t *testing.T) {
	tests := []struct {
		segment string
		want    bool
	}{
		{"venv", true},
		{".venv", true},
		{"my.env", true},
		{"a-b_c", true},
		{"", false},
		{".", false},
		{"..", false},
		{"x..y", false},
		{"...", false},
		{"nul\x00byte", false},
		{"/etc", false},
		{"/", false},
	}

	for _, tt := range tests {
		t.Run(tt.segment, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSafeSegment(tt.segment))
		})
	}
}

func TestIsSafeRelPath(t *testing.T) {
	assert.True(t, IsSafeRelPath("venv"))
	assert.True(t, IsSafeRelPath("proj/venv"))

	assert.False(t, IsSafeRelPath("../evil"))
	assert.False(t, IsSafeRelPath("proj/../evil"))
	assert.False(t, IsSafeRelPath("./venv"))
	assert.False(t, IsSafeRelPath("/abs"))
	assert.False(t, IsSafeRelPath("proj//venv"))
	assert.False(t, IsSafeRelPath("proj/"))
	assert.False(t, IsSafeRelPath(""))
}
