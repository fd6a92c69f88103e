package service

import (
	"context"
	"log"
	"sync"
	"time"

	"daily-bonus-api/internal/repository"
)

// RetentionConfig holds configuration for the claim log retention scheduler.
type RetentionConfig struct {
	// Retention is how long claim events are kept.
	// Default: 30 days
	Retention time.Duration

	// Interval is how often the pruning runs.
	// Default: 24 hours
	Interval time.Duration
}

// RetentionScheduler periodically prunes old claim audit events. Claim state
// itself expires in the cache; this only bounds the size of the audit log.
type RetentionScheduler struct {
	repo     repository.ClaimLogRepository
	config   RetentionConfig
	ticker   *time.Ticker
	stopCh   chan struct{}
	stopOnce sync.Once
	mu       sync.Mutex
	running  bool
}

// NewRetentionScheduler creates a new retention scheduler.
func NewRetentionScheduler(repo repository.ClaimLogRepository, config RetentionConfig) *RetentionScheduler {
	if config.Retention == 0 {
		config.Retention = 30 * 24 * time.Hour
	}
	if config.Interval == 0 {
		config.Interval = 24 * time.Hour
	}

	return &RetentionScheduler{
		repo:   repo,
		config: config,
		stopCh: make(chan struct{}),
	}
}

// Start begins the retention scheduler.
func (s *RetentionScheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.ticker = time.NewTicker(s.config.Interval)
	s.mu.Unlock()

	log.Printf("[RetentionScheduler] Started - Interval: %v, Retention: %v",
		s.config.Interval, s.config.Retention)

	go s.run()
}

// run is the main pruning loop.
func (s *RetentionScheduler) run() {
	for {
		select {
		case <-s.ticker.C:
			s.prune()
		case <-s.stopCh:
			log.Printf("[RetentionScheduler] Stopped")
			return
		}
	}
}

// prune performs the actual deletion.
func (s *RetentionScheduler) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	deleted, err := s.repo.DeleteOlderThan(ctx, s.config.Retention)
	if err != nil {
		log.Printf("[RetentionScheduler] Error during pruning: %v", err)
		return
	}

	if deleted > 0 {
		log.Printf("[RetentionScheduler] Pruned %d claim events", deleted)
	}
}

// Stop stops the retention scheduler.
func (s *RetentionScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
		s.running = false
	})
}

// RunNow triggers an immediate pruning run.
func (s *RetentionScheduler) RunNow() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	return s.repo.DeleteOlderThan(ctx, s.config.Retention)
}
