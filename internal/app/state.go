// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"strconv"
	"sync"
	"time"

	"github.com/j-veylop/burnrate-tui/internal/models"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired reports whether the notification has outlived its duration.
// Notifications without a duration never expire.
func (n *Notification) IsExpired(now time.Time) bool {
	if n.Duration <= 0 {
		return false
	}
	return now.Sub(n.CreatedAt) > n.Duration
}

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial  bool
	Sessions bool
	Plan     bool
}

// State is the data shared between the root model and the tabs.
type State struct {
	mu sync.RWMutex

	snapshot     *models.Snapshot
	plan         models.Plan
	detectedPlan models.Plan
	stats        models.IngestStats

	Loading LoadingState

	LastUpdated time.Time

	notifications   []Notification
	notificationSeq int

	now func() time.Time
}

// NewState returns an empty state in the initial loading phase.
func NewState() *State {
	return &State{
		plan:          models.PlanPro,
		notifications: make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
		now: time.Now,
	}
}

// SetClock replaces the time source used for rendering and expiry.
func (s *State) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Now returns the current time according to the state clock.
func (s *State) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.now()
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "initial":
		s.Loading.Initial = loading
	case "sessions":
		s.Loading.Sessions = loading
	case "plan":
		s.Loading.Plan = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial ||
		s.Loading.Sessions ||
		s.Loading.Plan
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// GetLoadingResources returns a list of currently loading resources.
func (s *State) GetLoadingResources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var resources []string
	if s.Loading.Initial {
		resources = append(resources, "initial")
	}
	if s.Loading.Sessions {
		resources = append(resources, "sessions")
	}
	if s.Loading.Plan {
		resources = append(resources, "plan")
	}
	return resources
}

// SetSnapshot stores the latest aggregation result.
func (s *State) SetSnapshot(snap models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = &snap
	if snap.Plan != "" {
		s.plan = snap.Plan
	}
	s.LastUpdated = s.now()
}

// GetSnapshot returns the latest snapshot, or nil before the first one.
func (s *State) GetSnapshot() *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// GetSessions returns the sessions of the latest snapshot, most recent first.
func (s *State) GetSessions() []models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return nil
	}
	sessions := make([]models.Session, len(s.snapshot.Sessions))
	copy(sessions, s.snapshot.Sessions)
	return sessions
}

// SetPlan records the selected plan.
func (s *State) SetPlan(p models.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = p
}

// GetPlan returns the selected plan.
func (s *State) GetPlan() models.Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plan
}

// SetDetectedPlan records the fixed plan that auto-detection resolved to.
func (s *State) SetDetectedPlan(p models.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detectedPlan = p
}

// GetDetectedPlan returns the fixed plan auto-detection resolved to.
func (s *State) GetDetectedPlan() models.Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.detectedPlan
}

// SetStats updates the loader counters.
func (s *State) SetStats(stats models.IngestStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = stats
}

// GetStats returns the loader counters.
func (s *State) GetStats() models.IngestStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := "n" + strconv.Itoa(s.notificationSeq)

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: s.now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = s.activeNotifications()
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeNotifications()
}

func (s *State) activeNotifications() []Notification {
	now := s.now()
	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired(now) {
			active = append(active, n)
		}
	}
	return active
}

// ClearAllNotifications removes all notifications.
func (s *State) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: s.now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}

// GetLastUpdated returns the last time a snapshot was stored.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastUpdated
}

// TimeSinceUpdate returns the duration since the last snapshot.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUpdated.IsZero() {
		return 0
	}
	return s.now().Sub(s.LastUpdated)
}
