package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPassRequestNormalizesToMidnightUTC(t *testing.T) {
	loc := time.FixedZone("CEST", 2*3600)
	in := time.Date(2026, 3, 14, 23, 45, 0, 0, loc) // 21:45 UTC same day

	req, err := NewPassRequest(2, in, "17-22")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), req.Date)
	assert.Equal(t, 2, req.Room)
	assert.Equal(t, "17-22", req.TimeRange)
}

func TestNewPassRequestRejectsBadInput(t *testing.T) {
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	_, err := NewPassRequest(0, date, "07-12")
	assert.Error(t, err, "room zero")

	_, err = NewPassRequest(-1, date, "07-12")
	assert.Error(t, err, "negative room")

	_, err = NewPassRequest(1, time.Time{}, "07-12")
	assert.Error(t, err, "zero date")

	_, err = NewPassRequest(1, date, "12-07")
	assert.Error(t, err, "inverted range")
}
