package repo

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hireflow/interviewd/internal/interviews"
	"github.com/hireflow/interviewd/pkg/errors"
	"github.com/hireflow/interviewd/pkg/logger"
)

// NewMemory returns a process-local repo. It backs tests and single-node
// setups; with SnapshotPath configured it periodically persists the data set
// as JSON (start Run for that).
func NewMemory(cfg MemoryConfig, log logger.Logger) *memoryRepo {
	m := &memoryRepo{
		data: make(map[string]interviews.Interview),
		cfg:  cfg,
		log:  log.With("memory_repo"),
	}

	if cfg.SnapshotPath != "" {
		m.loadSnapshot()
	}

	return m
}

type memoryRepo struct {
	mu   sync.RWMutex
	data map[string]interviews.Interview

	// txMu serializes transactions, so a conflict check and its write
	// execute as one unit
	txMu sync.Mutex

	cfg MemoryConfig
	log logger.Logger
}

func (m *memoryRepo) Insert(_ context.Context, i interviews.Interview) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if _, exists := m.data[i.ID]; exists {
		return "", errors.Failf(" insert duplicate interview %s", i.ID)
	}

	m.data[i.ID] = cloned(i)
	return i.ID, nil
}

func (m *memoryRepo) Get(_ context.Context, id string) (*interviews.Interview, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.data[id]
	if !ok {
		return nil, &interviews.NotFoundError{ID: id}
	}

	i = cloned(i)
	return &i, nil
}

func (m *memoryRepo) Update(_ context.Context, id string, mutate func(*interviews.Interview) error) (*interviews.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.data[id]
	if !ok {
		return nil, &interviews.NotFoundError{ID: id}
	}

	i := cloned(stored)
	if err := mutate(&i); err != nil {
		return nil, err
	}

	m.data[id] = cloned(i)
	return &i, nil
}

func (m *memoryRepo) FindConflicts(_ context.Context, q interviews.ConflictQuery) ([]interviews.Interview, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found []interviews.Interview
	for _, i := range m.data {
		if i.ID == q.ExcludeID || !i.Status.Active() {
			continue
		}
		if !interviews.Overlaps(i.ScheduledAt, i.EndsAt, q.Start, q.End) {
			continue
		}

		matches := q.InterviewerID != nil && i.InterviewerID == *q.InterviewerID ||
			q.CandidateID != nil && i.CandidateID == *q.CandidateID
		if matches {
			found = append(found, cloned(i))
		}
	}

	sort.Slice(found, func(a, b int) bool {
		return found[a].ScheduledAt.Before(found[b].ScheduledAt)
	})
	return found, nil
}

func (m *memoryRepo) FindFlow(_ context.Context, candidateID, jobID int64) ([]interviews.Interview, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var flow []interviews.Interview
	for _, i := range m.data {
		if i.CandidateID == candidateID && i.JobID == jobID {
			flow = append(flow, cloned(i))
		}
	}

	sort.Slice(flow, func(a, b int) bool {
		if flow[a].Round.Ordinal() != flow[b].Round.Ordinal() {
			return flow[a].Round.Ordinal() < flow[b].Round.Ordinal()
		}
		return flow[a].ScheduledAt.Before(flow[b].ScheduledAt)
	})
	return flow, nil
}

func (m *memoryRepo) FindDueReminders(_ context.Context, from, to time.Time) ([]interviews.Interview, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var due []interviews.Interview
	for _, i := range m.data {
		if i.Status.Canonical() != interviews.StatusScheduled || i.ReminderSent {
			continue
		}
		if i.ScheduledAt.Before(from) || i.ScheduledAt.After(to) {
			continue
		}
		due = append(due, cloned(i))
	}

	sort.Slice(due, func(a, b int) bool {
		return due[a].ScheduledAt.Before(due[b].ScheduledAt)
	})
	return due, nil
}

func (m *memoryRepo) MarkReminded(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.data[id]
	if !ok {
		return false, &interviews.NotFoundError{ID: id}
	}
	if i.ReminderSent {
		return false, nil
	}

	i.ReminderSent = true
	i.UpdatedAt = time.Now()
	m.data[id] = i
	return true, nil
}

func (m *memoryRepo) WithTxn(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx)
}

// Run persists periodic snapshots until ctx ends. No-op without a
// configured path.
func (m *memoryRepo) Run(ctx context.Context) {
	if m.cfg.SnapshotPath == "" {
		return
	}

	interval := m.cfg.SnapshotInterval
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.saveSnapshot()
		case <-ctx.Done():
			m.saveSnapshot()
			return
		}
	}
}

func (m *memoryRepo) saveSnapshot() {
	m.mu.RLock()
	bytes, err := json.Marshal(m.data)
	m.mu.RUnlock()

	if err != nil {
		m.log.Warn(errors.WrapFail(err, "marshal snapshot"))
		return
	}

	err = os.WriteFile(m.cfg.SnapshotPath, bytes, fs.ModePerm)
	if err != nil {
		m.log.Warn(errors.WrapFailf(err, " write snapshot to %s", m.cfg.SnapshotPath))
	}
}

func (m *memoryRepo) loadSnapshot() {
	bytes, err := os.ReadFile(m.cfg.SnapshotPath)
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	if err != nil {
		m.log.Warn(errors.WrapFail(err, "read snapshot"))
		return
	}

	var data map[string]interviews.Interview
	err = json.Unmarshal(bytes, &data)
	if err != nil {
		m.log.Warn(errors.WrapFail(err, "decode snapshot"))
		return
	}

	m.data = data
}

func (m *memoryRepo) Close(_ context.Context) error {
	if m.cfg.SnapshotPath != "" {
		m.saveSnapshot()
	}
	return nil
}

func cloned(i interviews.Interview) interviews.Interview {
	i.PanelMembers = slices.Clone(i.PanelMembers)
	return i
}
