// Package counters buffers job view/application counters in Redis and
// periodically flushes them into PostgreSQL. Increments are fire-and-forget:
// a failed increment is logged and never surfaces to the caller, so a
// successful read is never masked by its side effect.
package counters

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/careerdesk/careerdesk-api/internal/db"
)

// Redis hash keys: field = job ID, value = pending delta.
const (
	viewsKey        = "careerdesk:counters:views"
	applicationsKey = "careerdesk:counters:applications"
	popularityKey   = "careerdesk:counters:popularity"
)

// DefaultFlushSpec is the cron spec for draining buffered counters.
const DefaultFlushSpec = "@every 1m"

// Flusher applies counter deltas to durable storage.
type Flusher interface {
	AddJobCounters(ctx context.Context, id uuid.UUID, views, applications, popularity int) error
}

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// Service buffers counter increments. With a nil Redis client it runs in
// direct mode, applying every increment straight to the database.
type Service struct {
	rdb  *redis.Client
	db   Flusher
	cron *cron.Cron
	spec string
}

// New creates a counter service. rdb may be nil for direct-DB mode.
func New(rdb *redis.Client, flusher Flusher) *Service {
	return &Service{
		rdb:  rdb,
		db:   flusher,
		spec: DefaultFlushSpec,
	}
}

// Start registers the periodic flush. In direct mode there is nothing to
// flush and no scheduler is started.
func (s *Service) Start(ctx context.Context) error {
	if s.rdb == nil {
		log.Println("[counters] Redis not configured, running in direct-DB mode")
		return nil
	}

	s.cron = cron.New(cron.WithLogger(cron.DefaultLogger))
	_, err := s.cron.AddFunc(s.spec, func() {
		if err := s.Flush(ctx); err != nil {
			log.Printf("[counters] flush error: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[counters] Flush scheduler started, spec: %s", s.spec)
	return nil
}

// Stop drains once and shuts the scheduler down.
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.rdb != nil {
		if err := s.Flush(context.Background()); err != nil {
			log.Printf("[counters] final flush error: %v", err)
		}
	}
	log.Println("[counters] Stopped")
}

// ViewSeen records one view of a posting. Best-effort.
func (s *Service) ViewSeen(ctx context.Context, id uuid.UUID) {
	s.increment(ctx, id, 1, 0, 0)
}

// ApplicationClicked records one apply-click: applications +1,
// popularity +ApplicationPopularityBoost. Best-effort.
func (s *Service) ApplicationClicked(ctx context.Context, id uuid.UUID) {
	s.increment(ctx, id, 0, 1, db.ApplicationPopularityBoost)
}

func (s *Service) increment(ctx context.Context, id uuid.UUID, views, applications, popularity int) {
	if s.rdb != nil {
		pipe := s.rdb.Pipeline()
		if views != 0 {
			pipe.HIncrBy(ctx, viewsKey, id.String(), int64(views))
		}
		if applications != 0 {
			pipe.HIncrBy(ctx, applicationsKey, id.String(), int64(applications))
		}
		if popularity != 0 {
			pipe.HIncrBy(ctx, popularityKey, id.String(), int64(popularity))
		}
		if _, err := pipe.Exec(ctx); err == nil {
			return
		} else {
			log.Printf("[counters] Redis increment failed for %s, falling back to DB: %v", id, err)
		}
	}

	if err := s.db.AddJobCounters(ctx, id, views, applications, popularity); err != nil {
		log.Printf("[counters] counter increment failed for %s: %v", id, err)
	}
}

// Flush drains the Redis buffers and applies the deltas per posting.
// In direct mode there are no buffers and Flush is a no-op.
func (s *Service) Flush(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}

	views, err := s.drain(ctx, viewsKey)
	if err != nil {
		return err
	}
	applications, err := s.drain(ctx, applicationsKey)
	if err != nil {
		return err
	}
	popularity, err := s.drain(ctx, popularityKey)
	if err != nil {
		return err
	}

	for id, delta := range MergeDeltas(views, applications, popularity) {
		if err := s.db.AddJobCounters(ctx, id, delta.Views, delta.Applications, delta.Popularity); err != nil {
			log.Printf("[counters] failed to apply deltas for %s: %v", id, err)
		}
	}
	return nil
}

// drain atomically claims a hash via RENAME to a scratch key, reads it and
// deletes it. Concurrent increments land in a fresh hash for the next flush.
func (s *Service) drain(ctx context.Context, key string) (map[string]int, error) {
	scratch := key + ":flush"
	if err := s.rdb.Rename(ctx, key, scratch).Err(); err != nil {
		if err == redis.Nil {
			return nil, nil // nothing buffered
		}
		return nil, fmt.Errorf("failed to claim %s: %w", key, err)
	}

	fields, err := s.rdb.HGetAll(ctx, scratch).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", scratch, err)
	}
	if err := s.rdb.Del(ctx, scratch).Err(); err != nil {
		log.Printf("[counters] failed to delete %s: %v", scratch, err)
	}

	return ParseCounts(fields), nil
}

// Delta is the pending counter change for one posting.
type Delta struct {
	Views        int
	Applications int
	Popularity   int
}

// ParseCounts converts a Redis hash payload into integer counts, skipping
// unparseable entries.
func ParseCounts(fields map[string]string) map[string]int {
	if len(fields) == 0 {
		return nil
	}
	counts := make(map[string]int, len(fields))
	for field, value := range fields {
		var n int
		if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
			log.Printf("[counters] skipping unparseable count %q=%q", field, value)
			continue
		}
		counts[field] = n
	}
	return counts
}

// MergeDeltas folds the three per-metric maps into per-job deltas, dropping
// fields that are not valid job IDs.
func MergeDeltas(views, applications, popularity map[string]int) map[uuid.UUID]Delta {
	deltas := make(map[uuid.UUID]Delta)
	add := func(counts map[string]int, apply func(*Delta, int)) {
		for field, n := range counts {
			id, err := uuid.Parse(field)
			if err != nil {
				log.Printf("[counters] skipping invalid job ID %q", field)
				continue
			}
			delta := deltas[id]
			apply(&delta, n)
			deltas[id] = delta
		}
	}
	add(views, func(d *Delta, n int) { d.Views += n })
	add(applications, func(d *Delta, n int) { d.Applications += n })
	add(popularity, func(d *Delta, n int) { d.Popularity += n })
	return deltas
}
