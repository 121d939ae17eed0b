package projection

import (
	"sync"
	"time"

	"github.com/j-veylop/burnrate-tui/internal/models"
	"github.com/j-veylop/burnrate-tui/internal/services/sessions"
)

// Service runs the build and evaluate pipeline and caches the latest result.
type Service struct {
	mu      sync.RWMutex
	builder *sessions.Builder
	last    *models.Snapshot
}

// New creates a projection service over builder.
func New(builder *sessions.Builder) *Service {
	return &Service{builder: builder}
}

// Compute groups records into sessions for sel and evaluates them at now.
func (s *Service) Compute(records []models.UsageRecord, sel models.Plan, now time.Time) models.Snapshot {
	built := s.builder.Build(records, sel)
	snap := Evaluate(built, now)
	snap.Plan = sel

	s.mu.Lock()
	s.last = &snap
	s.mu.Unlock()

	return snap
}

// Cached returns the most recently computed snapshot, or nil.
func (s *Service) Cached() *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil
	}
	snap := *s.last
	return &snap
}

// DetectedPlan reports which fixed plan auto-detection settles on for the
// cached sessions.
func (s *Service) DetectedPlan() models.Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return s.builder.Table.Detect(nil)
	}
	return s.builder.Table.Detect(s.last.Sessions)
}
