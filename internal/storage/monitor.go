package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// Monitor logs episode summaries while runs are in progress, keyed by run
// ID. The in-memory backend is always available; the SQLite backend needs
// the sqlite build tag.
type Monitor interface {
	Init(ctx context.Context) error
	RecordEpisode(ctx context.Context, runID string, row EpisodeRow) error
	Episodes(ctx context.Context, runID string) ([]EpisodeRow, error)
	Runs(ctx context.Context) ([]string, error)
}

var errMonitorNotInitialized = errors.New("monitor is not initialized")

type MemoryMonitor struct {
	mu          sync.RWMutex
	initialized bool
	episodes    map[string][]EpisodeRow
}

func NewMemoryMonitor() *MemoryMonitor {
	return &MemoryMonitor{}
}

func (m *MemoryMonitor) Init(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.initialized = true
	m.episodes = make(map[string][]EpisodeRow)
	return nil
}

// RecordEpisode replaces any earlier row with the same episode number.
func (m *MemoryMonitor) RecordEpisode(_ context.Context, runID string, row EpisodeRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return errMonitorNotInitialized
	}
	rows := m.episodes[runID]
	for i := range rows {
		if rows[i].Episode == row.Episode {
			rows[i] = row
			return nil
		}
	}
	m.episodes[runID] = append(rows, row)
	return nil
}

func (m *MemoryMonitor) Episodes(_ context.Context, runID string) ([]EpisodeRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.initialized {
		return nil, errMonitorNotInitialized
	}
	rows := append([]EpisodeRow(nil), m.episodes[runID]...)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Episode < rows[j].Episode })
	return rows, nil
}

func (m *MemoryMonitor) Runs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.initialized {
		return nil, errMonitorNotInitialized
	}
	ids := make([]string, 0, len(m.episodes))
	for id := range m.episodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
