package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		ts := now.Add(-d)
		return &ts
	}

	tests := []struct {
		name       string
		lastActive *time.Time
		want       ActivityStatus
	}{
		{"31 days ago is inactive", at(31 * 24 * time.Hour), ActivityInactive},
		{"29 days ago is active", at(29 * 24 * time.Hour), ActivityActive},
		{"exactly 30 days is active", at(InactivityThreshold), ActivityActive},
		{"just over 30 days is inactive", at(InactivityThreshold + time.Second), ActivityInactive},
		{"absent is inactive", nil, ActivityInactive},
		{"future timestamp is active", at(-time.Hour), ActivityActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.lastActive, now))
		})
	}
}

func TestUser_Status(t *testing.T) {
	now := time.Now()
	recent := now.Add(-time.Hour)

	assert.Equal(t, ActivityActive, (&User{LastActive: &recent}).Status(now))
	assert.Equal(t, ActivityInactive, (&User{}).Status(now))
}

func TestParseActivityStatus(t *testing.T) {
	for input, want := range map[string]ActivityStatus{
		"":         "",
		"All":      "",
		"active":   ActivityActive,
		"Inactive": ActivityInactive,
	} {
		got, err := ParseActivityStatus(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseActivityStatus("dormant")
	assert.Error(t, err)
}
