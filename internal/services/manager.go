// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/burnrate-tui/internal/config"
	"github.com/j-veylop/burnrate-tui/internal/db"
	"github.com/j-veylop/burnrate-tui/internal/logger"
	"github.com/j-veylop/burnrate-tui/internal/models"
	"github.com/j-veylop/burnrate-tui/internal/services/projection"
	"github.com/j-veylop/burnrate-tui/internal/services/sessions"
	"github.com/j-veylop/burnrate-tui/internal/services/usagelog"
)

const (
	refreshTimeout = 10 * time.Second
	pruneInterval  = time.Hour
)

type (
	// SessionsUpdatedEvent is emitted after every aggregation pass.
	SessionsUpdatedEvent struct {
		Snapshot models.Snapshot
	}

	// IngestEvent is emitted when the loader stores new records.
	IngestEvent struct {
		Count int
		Stats models.IngestStats
	}

	// ScanCompleteEvent is emitted after each full pass over the log dirs.
	ScanCompleteEvent struct {
		Stats models.IngestStats
	}

	// PlanChangedEvent is emitted when the selected plan changes.
	PlanChangedEvent struct {
		Plan models.Plan
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (SessionsUpdatedEvent) isServiceEvent() {}
func (IngestEvent) isServiceEvent()          {}
func (ScanCompleteEvent) isServiceEvent()    {}
func (PlanChangedEvent) isServiceEvent()     {}
func (ErrorEvent) isServiceEvent()           {}

// Manager orchestrates services and event routing.
type Manager struct {
	mu          sync.RWMutex
	cfg         *config.Config
	database    *db.DB
	loader      *usagelog.Service
	projection  *projection.Service
	plan        models.Plan
	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
	closed      bool
	wg          sync.WaitGroup

	// refreshMu keeps aggregation passes and their notification checks in
	// order.
	refreshMu     sync.Mutex
	previous      *models.Snapshot
	notifications bool
	notify        func(title, message string) error
	now           func() time.Time
}

// NewManager opens the database, starts the log loader and begins
// refreshing sessions.
func NewManager(cfg *config.Config) (*Manager, error) {
	m, err := newManager(cfg)
	if err != nil {
		return nil, err
	}
	m.start()
	return m, nil
}

func newManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		cfg:           cfg,
		plan:          cfg.Plan,
		eventChan:     make(chan ServiceEvent, 100),
		stopChan:      make(chan struct{}),
		notifications: cfg.Notifications,
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		now: time.Now,
	}

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// A plan chosen in the UI outlives the environment default.
	stored, found, err := m.database.GetSetting(context.Background(), db.SettingPlan)
	if err != nil {
		logger.Warn("failed to read stored plan", "error", err)
	} else if found {
		if p, err := models.ParsePlan(stored); err == nil {
			m.plan = p
		} else {
			logger.Warn("ignoring invalid stored plan", "plan", stored)
		}
	}

	m.loader = usagelog.New(m.database, cfg.DataDirs, cfg.PollInterval)
	m.projection = projection.New(sessions.NewBuilder(cfg.PlanTable, cfg.Location))

	return m, nil
}

func (m *Manager) start() {
	m.pruneInBackground()
	m.loader.Start(context.Background())

	m.wg.Add(2)
	go m.routeEvents()
	go m.refreshLoop()
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	defer m.wg.Done()

	for {
		select {
		case event := <-m.loader.Events():
			m.handleLoaderEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

// handleLoaderEvent converts and broadcasts loader events.
func (m *Manager) handleLoaderEvent(event usagelog.Event) {
	switch event.Type {
	case usagelog.EventRecordsIngested:
		m.broadcast(IngestEvent{Count: event.Count, Stats: m.IngestStats()})
		m.refreshInBackground()

	case usagelog.EventScanComplete:
		m.broadcast(ScanCompleteEvent{Stats: m.IngestStats()})
		if m.Snapshot() == nil {
			m.refreshInBackground()
		}

	case usagelog.EventError:
		logger.Error("log loader error", "path", event.Path, "error", event.Error)
		m.broadcast(ErrorEvent{
			Service: "usagelog",
			Error:   event.Error,
		})
	}
}

// refreshLoop re-runs the pipeline on a timer since "now" keeps moving even
// when no new records arrive.
func (m *Manager) refreshLoop() {
	defer m.wg.Done()

	interval := m.cfg.RefreshInterval
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	pruneTicker := time.NewTicker(pruneInterval)
	defer pruneTicker.Stop()

	for {
		select {
		case <-ticker.C:
			m.refreshInBackground()
		case <-pruneTicker.C:
			m.pruneInBackground()
		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) refreshInBackground() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	if _, err := m.Refresh(ctx); err != nil {
		logger.Error("refresh failed", "error", err)
		m.broadcast(ErrorEvent{Service: "sessions", Error: err})
	}
}

func (m *Manager) pruneInBackground() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	if _, err := m.Prune(ctx); err != nil {
		logger.Warn("prune failed", "error", err)
	}
}

// historyStart is the oldest timestamp Refresh loads. It reaches one window
// past HISTORY_DAYS so the oldest day in range is not cut mid-session.
// Windows that straddle the cutoff itself still shift as it advances.
func (m *Manager) historyStart(now time.Time) time.Time {
	return now.AddDate(0, 0, -m.cfg.HistoryDays).Add(-models.SessionDuration)
}

// Prune deletes records Refresh can no longer load and compacts the
// database file when anything was removed.
func (m *Manager) Prune(ctx context.Context) (int64, error) {
	removed, err := m.database.PruneUsageRecords(ctx, m.historyStart(m.now()))
	if err != nil {
		return 0, err
	}
	if removed == 0 {
		return 0, nil
	}
	logger.Info("pruned old usage records", "count", removed)
	if err := m.database.Vacuum(); err != nil {
		return removed, fmt.Errorf("failed to vacuum database: %w", err)
	}
	return removed, nil
}

// Rescan reads new lines from the usage logs, then refreshes.
func (m *Manager) Rescan(ctx context.Context) (models.Snapshot, error) {
	if _, err := m.loader.Scan(ctx); err != nil {
		logger.Warn("rescan finished with errors", "error", err)
	}
	return m.Refresh(ctx)
}

// Refresh loads the history window, rebuilds sessions and broadcasts the
// resulting snapshot.
func (m *Manager) Refresh(ctx context.Context) (models.Snapshot, error) {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	now := m.now()
	since := m.historyStart(now)
	records, err := m.database.GetUsageRecordsSince(ctx, since)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to load usage records: %w", err)
	}

	snap := m.projection.Compute(records, m.Plan(), now)
	m.checkNotifications(snap)
	m.broadcast(SessionsUpdatedEvent{Snapshot: snap})
	return snap, nil
}

// checkNotifications raises desktop alerts on transitions only: a new
// session starting, crossing into critical usage, and the burn rate
// escalating. The first snapshot only establishes a baseline.
func (m *Manager) checkNotifications(next models.Snapshot) {
	prev := m.previous
	m.previous = &next

	if !m.notifications || prev == nil || !next.HasCurrent() {
		return
	}

	cur := next.Current
	if cur.IsActive(next.GeneratedAt) && (!prev.HasCurrent() || prev.Current.ID != cur.ID) {
		m.send("New usage session",
			fmt.Sprintf("Window resets at %s", cur.EndTime.In(m.location()).Format("15:04")))
	}

	if next.Status.Severity == models.SeverityCritical && prev.Status.Severity != models.SeverityCritical {
		m.send("Token limit approaching",
			fmt.Sprintf("%.0f%% of %s tokens used", next.Progress*100, humanize.Comma(cur.TokenLimit)))
	}

	if burning(next) && !burning(*prev) {
		m.send("High burn rate",
			fmt.Sprintf("Consuming %s tokens/min", humanize.Comma(int64(*next.Rate))))
	}
}

func burning(s models.Snapshot) bool {
	return s.Status.Severity == models.SeverityHigh &&
		s.Rate != nil && *s.Rate > projection.HighBurnRate
}

func (m *Manager) send(title, message string) {
	if err := m.notify(title, message); err != nil {
		logger.Warn("desktop notification failed", "title", title, "error", err)
	}
}

func (m *Manager) location() *time.Location {
	if m.cfg.Location != nil {
		return m.cfg.Location
	}
	return time.Local
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return
	}

	// Send to main event channel
	select {
	case m.eventChan <- event:
	default:
	}

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return event
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Plan returns the selected plan.
func (m *Manager) Plan() models.Plan {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.plan
}

// SetPlan selects and persists a plan, then refreshes.
func (m *Manager) SetPlan(ctx context.Context, p models.Plan) (models.Snapshot, error) {
	parsed, err := models.ParsePlan(string(p))
	if err != nil {
		return models.Snapshot{}, err
	}
	if err := m.database.SetSetting(ctx, db.SettingPlan, string(parsed)); err != nil {
		return models.Snapshot{}, err
	}

	m.mu.Lock()
	m.plan = parsed
	m.mu.Unlock()

	m.broadcast(PlanChangedEvent{Plan: parsed})
	return m.Refresh(ctx)
}

// CyclePlan advances to the next plan.
func (m *Manager) CyclePlan(ctx context.Context) (models.Snapshot, error) {
	return m.SetPlan(ctx, m.Plan().Next())
}

// Snapshot returns the latest snapshot, or nil before the first refresh.
func (m *Manager) Snapshot() *models.Snapshot {
	return m.projection.Cached()
}

// DetectedPlan returns the fixed plan auto-detection currently resolves to.
func (m *Manager) DetectedPlan() models.Plan {
	return m.projection.DetectedPlan()
}

// IngestStats returns the loader counters and the stored record count.
func (m *Manager) IngestStats() models.IngestStats {
	stats := m.loader.Stats()
	n, err := m.database.CountUsageRecords(context.Background())
	if err != nil {
		logger.Warn("failed to count usage records", "error", err)
		return stats
	}
	stats.RecordsInDatabase = n
	return stats
}

// Config returns the configuration the manager was built with.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Loader returns the log loader.
func (m *Manager) Loader() *usagelog.Service {
	return m.loader
}

// Projection returns the projection service.
func (m *Manager) Projection() *projection.Service {
	return m.projection
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.stopChan)
	m.mu.Unlock()

	m.wg.Wait()

	var errs []error

	if err := m.loader.Close(); err != nil {
		errs = append(errs, err)
	}

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
