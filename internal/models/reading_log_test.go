package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/wfunc/car-dash/internal/telemetry"
)

func TestNewReadingLog(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	snap := telemetry.Snapshot{
		Reading:   telemetry.Reading{RPM: 640, Locked: true, Temperature: 88},
		Updates:   12,
		UpdatedAt: at,
	}

	log := NewReadingLog(snap, "/dev/ttyUSB0", "session-1")
	assert.Equal(t, 640, log.RPM)
	assert.True(t, log.Locked)
	assert.Equal(t, 88, log.Temperature)
	assert.Equal(t, uint64(12), log.Sequence)
	assert.Equal(t, "/dev/ttyUSB0", log.Source)
	assert.Equal(t, "session-1", log.SessionID)
	assert.Equal(t, int64(1700000000123), log.Timestamp)
	assert.Equal(t, snap.Reading, log.Reading())
}

func TestBeforeCreateFillsTimes(t *testing.T) {
	log := NewReadingLog(telemetry.Snapshot{}, "simulated", "s")
	assert.Zero(t, log.Timestamp)

	before := time.Now()
	assert.NoError(t, log.BeforeCreate(nil))
	assert.False(t, log.CreatedAt.Before(before))
	assert.Equal(t, log.CreatedAt.UnixMilli(), log.Timestamp)

	// 已有时间不覆盖
	fixed := NewReadingLog(telemetry.Snapshot{UpdatedAt: time.UnixMilli(42)}, "simulated", "s")
	assert.NoError(t, fixed.BeforeCreate(nil))
	assert.Equal(t, int64(42), fixed.Timestamp)
}
