package build

import (
	"sync"
	"time"
)

// BuildMetrics tracks rebuild counts and durations.
type BuildMetrics struct {
	TotalBuilds      int64
	SuccessfulBuilds int64
	FailedBuilds     int64
	Coalesced        int64
	AverageDuration  time.Duration
	TotalDuration    time.Duration
	LastError        error
	mutex            sync.RWMutex
}

// NewBuildMetrics creates a new build metrics tracker
func NewBuildMetrics() *BuildMetrics {
	return &BuildMetrics{}
}

// RecordBuild records a rebuild result.
func (bm *BuildMetrics) RecordBuild(result RebuildResult) {
	bm.mutex.Lock()
	defer bm.mutex.Unlock()

	bm.TotalBuilds++
	bm.TotalDuration += result.Duration

	if result.Error != nil {
		bm.FailedBuilds++
		bm.LastError = result.Error
	} else {
		bm.SuccessfulBuilds++
		bm.LastError = nil
	}

	bm.AverageDuration = bm.TotalDuration / time.Duration(bm.TotalBuilds)
}

// RecordCoalesced counts a request folded into a pending rebuild.
func (bm *BuildMetrics) RecordCoalesced() {
	bm.mutex.Lock()
	defer bm.mutex.Unlock()
	bm.Coalesced++
}

// BuildStats is a point-in-time copy of BuildMetrics.
type BuildStats struct {
	TotalBuilds      int64
	SuccessfulBuilds int64
	FailedBuilds     int64
	Coalesced        int64
	AverageDuration  time.Duration
	LastError        error
}

// SuccessRate returns the share of successful rebuilds as a percentage.
func (s BuildStats) SuccessRate() float64 {
	if s.TotalBuilds == 0 {
		return 0
	}
	return float64(s.SuccessfulBuilds) / float64(s.TotalBuilds) * 100
}

// Snapshot returns the current counters.
func (bm *BuildMetrics) Snapshot() BuildStats {
	bm.mutex.RLock()
	defer bm.mutex.RUnlock()
	return BuildStats{
		TotalBuilds:      bm.TotalBuilds,
		SuccessfulBuilds: bm.SuccessfulBuilds,
		FailedBuilds:     bm.FailedBuilds,
		Coalesced:        bm.Coalesced,
		AverageDuration:  bm.AverageDuration,
		LastError:        bm.LastError,
	}
}
