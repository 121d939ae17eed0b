package usagelog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/burnrate-tui/internal/db"
	"github.com/j-veylop/burnrate-tui/internal/logger"
	"github.com/j-veylop/burnrate-tui/internal/models"
)

const (
	logExt           = ".jsonl"
	debounceInterval = 100 * time.Millisecond
	eventBufferSize  = 100
)

// EventType defines the type of loader event.
type EventType int

const (
	// EventRecordsIngested means new records were stored.
	EventRecordsIngested EventType = iota
	// EventScanComplete is sent after every full pass over the data dirs.
	EventScanComplete
	// EventError reports a failure that did not stop the loader.
	EventError
)

// Event represents a loader event.
type Event struct {
	Type  EventType
	Count int
	Path  string
	Error error
}

// Service tails usage logs under a set of directories and stores new
// records in the database.
type Service struct {
	mu           sync.RWMutex
	db           *db.DB
	dirs         []string
	parser       Parser
	pollInterval time.Duration

	watcher *fsnotify.Watcher
	watched map[string]struct{}
	files   map[string]struct{}
	stats   models.IngestStats

	// ingestMu serializes reads so one file is never consumed twice from
	// the same offset.
	ingestMu sync.Mutex

	debounceMu    sync.Mutex
	debounceTimer *time.Timer
	pending       map[string]struct{}
	flushChan     chan struct{}

	eventChan chan Event
	stopChan  chan struct{}
	cancel    context.CancelFunc
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates a loader over dirs. Nothing runs until Start.
func New(database *db.DB, dirs []string, pollInterval time.Duration) *Service {
	return &Service{
		db:           database,
		dirs:         dirs,
		parser:       Parser{Pricing: DefaultPricing()},
		pollInterval: pollInterval,
		watched:      make(map[string]struct{}),
		files:        make(map[string]struct{}),
		pending:      make(map[string]struct{}),
		flushChan:    make(chan struct{}, 1),
		eventChan:    make(chan Event, eventBufferSize),
		stopChan:     make(chan struct{}),
		cancel:       func() {},
	}
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Dirs returns the directories being tailed.
func (s *Service) Dirs() []string {
	return append([]string(nil), s.dirs...)
}

// Stats returns a copy of the ingest counters.
func (s *Service) Stats() models.IngestStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := s.stats
	stats.FilesTracked = len(s.files)
	return stats
}

// Start runs an initial scan, then keeps ingesting on file events and on
// every poll tick. File watching is best effort; polling always runs.
func (s *Service) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	if err := s.startWatcher(); err != nil {
		logger.Warn("file watching unavailable, polling only", "error", err)
	} else {
		s.wg.Add(1)
		go s.watchLoop(ctx)
	}

	s.wg.Add(1)
	go s.pollLoop(ctx)
}

// Scan ingests every log file under the data dirs. Failures on individual
// files are reported and do not stop the pass.
func (s *Service) Scan(ctx context.Context) (int, error) {
	files, dirs := s.discover()
	s.watchDirs(dirs)

	var errs []error
	total := 0
	for _, path := range files {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
		n, err := s.IngestFile(ctx, path)
		if err != nil {
			errs = append(errs, err)
			s.sendEvent(Event{Type: EventError, Path: path, Error: err})
			continue
		}
		total += n
	}

	s.mu.Lock()
	s.stats.LastScan = time.Now()
	s.mu.Unlock()

	if total > 0 {
		s.sendEvent(Event{Type: EventRecordsIngested, Count: total})
	}
	s.sendEvent(Event{Type: EventScanComplete, Count: total})
	return total, errors.Join(errs...)
}

// IngestFile reads whatever path gained since its stored offset. Only
// complete lines are consumed, so a line still being written is picked up on
// the next pass. A file smaller than its offset was truncated and is read
// again from the start.
func (s *Service) IngestFile(ctx context.Context, path string) (int, error) {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	size := info.Size()

	stored, _, err := s.db.GetFileOffset(ctx, path)
	if err != nil {
		return 0, err
	}
	offset := stored.Offset
	if size < offset {
		logger.Info("log file truncated, rereading", "path", path, "offset", offset, "size", size)
		offset = 0
	}

	s.mu.Lock()
	s.files[path] = struct{}{}
	s.mu.Unlock()

	if size == offset {
		return 0, nil
	}

	data, err := io.ReadAll(io.NewSectionReader(f, offset, size-offset))
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}
	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		return 0, nil
	}
	chunk := data[:end+1]

	result := s.parser.ParseReader(bytes.NewReader(chunk), path)
	records := Dedup(result.Records)

	inserted, err := s.db.InsertUsageRecords(ctx, records, path)
	if err != nil {
		return 0, err
	}
	if err := s.db.SetFileOffset(ctx, path, offset+int64(len(chunk)), size); err != nil {
		return inserted, err
	}

	s.mu.Lock()
	s.stats.RecordsParsed += len(result.Records)
	s.stats.RecordsStored += inserted
	s.stats.LinesSkipped += result.SkipCount
	s.stats.LinesMalformed += result.ErrorCount
	s.mu.Unlock()

	if result.ErrorCount > 0 {
		logger.Debug("skipped malformed lines", "path", path, "count", result.ErrorCount)
	}
	return inserted, nil
}

// discover walks the data dirs and returns log files and directories, both
// sorted. Missing dirs are skipped.
func (s *Service) discover() (files, dirs []string) {
	for _, root := range s.dirs {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				dirs = append(dirs, path)
				return nil
			}
			if filepath.Ext(path) == logExt {
				files = append(files, path)
			}
			return nil
		})
	}
	sort.Strings(files)
	sort.Strings(dirs)
	return files, dirs
}

// startWatcher creates the fsnotify watcher. Directories are added by
// watchDirs as they are discovered.
func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.watcher = watcher
	s.mu.Unlock()

	_, dirs := s.discover()
	s.watchDirs(dirs)
	return nil
}

func (s *Service) watchDirs(dirs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher == nil {
		return
	}
	for _, dir := range dirs {
		if _, ok := s.watched[dir]; ok {
			continue
		}
		if err := s.watcher.Add(dir); err != nil {
			logger.Debug("failed to watch directory", "dir", dir, "error", err)
			continue
		}
		s.watched[dir] = struct{}{}
	}
}

// watchLoop handles file system events with debouncing.
func (s *Service) watchLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.handleFSEvent(event)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.flushChan:
			s.flushPending(ctx)

		case <-s.stopChan:
			return
		}
	}
}

func (s *Service) handleFSEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			// New project directory: watch it and anything created inside
			// before the watch was in place.
			_, dirs := s.discoverUnder(event.Name)
			s.watchDirs(dirs)
			return
		}
	}

	if filepath.Ext(event.Name) != logExt || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	s.debounceMu.Lock()
	defer s.debounceMu.Unlock()
	s.pending[event.Name] = struct{}{}

	// Debounce rapid changes
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(debounceInterval, func() {
		select {
		case s.flushChan <- struct{}{}:
		default:
		}
	})
}

func (s *Service) discoverUnder(root string) (files, dirs []string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			dirs = append(dirs, path)
		} else if filepath.Ext(path) == logExt {
			files = append(files, path)
		}
		return nil
	})
	return files, dirs
}

func (s *Service) flushPending(ctx context.Context) {
	s.debounceMu.Lock()
	paths := make([]string, 0, len(s.pending))
	for p := range s.pending {
		paths = append(paths, p)
	}
	s.pending = make(map[string]struct{})
	s.debounceMu.Unlock()
	sort.Strings(paths)

	total := 0
	for _, path := range paths {
		n, err := s.IngestFile(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("failed to ingest log file", "path", path, "error", err)
			s.sendEvent(Event{Type: EventError, Path: path, Error: err})
			continue
		}
		total += n
	}
	if total > 0 {
		s.sendEvent(Event{Type: EventRecordsIngested, Count: total})
	}
}

// pollLoop runs the initial scan and then rescans on every tick. It is the
// safety net for platforms or filesystems where events are lost.
func (s *Service) pollLoop(ctx context.Context) {
	defer s.wg.Done()

	if _, err := s.Scan(ctx); err != nil && ctx.Err() == nil {
		logger.Error("initial log scan failed", "error", err)
	}
	if s.pollInterval <= 0 {
		return
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.Scan(ctx); err != nil && ctx.Err() == nil {
				logger.Error("log scan failed", "error", err)
			}
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the loops and the file watcher. It is safe to call twice.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.cancel()

		s.debounceMu.Lock()
		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}
		s.debounceMu.Unlock()

		s.mu.Lock()
		watcher := s.watcher
		s.mu.Unlock()
		if watcher != nil {
			err = watcher.Close()
		}

		s.wg.Wait()
	})
	return err
}
