package testutil

import (
	"context"
	"errors"
	"sync"

	"surveycopy/internal/models"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

var ErrLockTaken = errors.New("lock already taken")

// Locker is an in-process stand-in for the redsync locker.
type Locker struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewLocker() *Locker {
	return &Locker{held: map[string]bool{}}
}

func (l *Locker) TryLock(_ context.Context, name string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[name] {
		return nil, ErrLockTaken
	}
	l.held[name] = true
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, name)
	}, nil
}

func (l *Locker) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.held)
}

// ReportStore keeps copy reports in memory. Unknown ids are redis.Nil like
// the redis store.
type ReportStore struct {
	mu      sync.Mutex
	reports map[string]*models.CopyReport
	history map[int64][]string
}

func NewReportStore() *ReportStore {
	return &ReportStore{reports: map[string]*models.CopyReport{}, history: map[int64][]string{}}
}

func (s *ReportStore) SaveCopyReport(_ context.Context, v *models.CopyReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[v.ID] = v
	s.history[v.SourceQID] = append([]string{v.ID}, s.history[v.SourceQID]...)
	return nil
}

func (s *ReportStore) GetCopyReport(_ context.Context, id string) (*models.CopyReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.reports[id]
	if !ok {
		return nil, redis.Nil
	}
	return v, nil
}

func (s *ReportStore) GetQuestionCopyHistory(_ context.Context, sourceQID int64) ([]*models.CopyReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var reports []*models.CopyReport
	for _, id := range s.history[sourceQID] {
		reports = append(reports, s.reports[id])
	}
	return reports, nil
}

// Limiter counts calls per key and refuses once a key is over its rate.
type Limiter struct {
	mu    sync.Mutex
	calls map[string]int
	Err   error
}

func NewLimiter(err error) *Limiter {
	return &Limiter{calls: map[string]int{}, Err: err}
}

func (l *Limiter) Allow(_ context.Context, key string, limit redis_rate.Limit) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls[key]++
	if l.calls[key] > limit.Rate {
		return l.Err
	}
	return nil
}

func (l *Limiter) Calls(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[key]
}
