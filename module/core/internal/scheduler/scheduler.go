package scheduler

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Scheduler runs deferred functions in-process. Pending jobs are lost on
// restart; that is acceptable here because every scheduled job is an
// idempotent recompute and the nightly sweep heals missed windows.
type Scheduler struct {
	mu     sync.Mutex
	timers map[int64]*time.Timer
	nextID int64
	closed bool
}

func New() *Scheduler {
	return &Scheduler{timers: make(map[int64]*time.Timer)}
}

func (s *Scheduler) Schedule(name string, delay time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	id := s.nextID
	s.nextID++

	s.timers[id] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()

		log.Debugf("running deferred task %q", name)
		if err := fn(context.Background()); err != nil {
			log.Errorf("deferred task %q: %v", name, err)
		}
	})
}

// Stop cancels pending timers. Jobs already running complete on their own.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
