// Package flags serves remotely configured feature flags. Values are
// fetched from the repository and activated as one snapshot, so readers
// never see a half-applied refresh.
package flags

import (
	"context"
	"fmt"
	"maps"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/metrics"
)

const DefaultRefresh = "@every 5m"

type Service struct {
	repo     Repository
	defaults map[string]bool
	active   atomic.Pointer[map[string]bool]
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
}

// NewService starts with defaults active until the first successful fetch.
func NewService(repo Repository, defaults map[string]bool, m *metrics.Metrics, log logrus.FieldLogger) *Service {
	s := &Service{
		repo:     repo,
		defaults: maps.Clone(defaults),
		metrics:  m,
		log:      log.WithField("component", "flags"),
	}
	initial := maps.Clone(defaults)
	if initial == nil {
		initial = map[string]bool{}
	}
	s.active.Store(&initial)
	return s
}

// FetchAndActivate reads every flag and replaces the active set. Flags
// missing remotely fall back to their defaults. On error the previous set
// stays active.
func (s *Service) FetchAndActivate(ctx context.Context) (map[string]bool, error) {
	remote, err := s.repo.All(ctx)
	if err != nil {
		s.metrics.RecordFlagRefresh(false)
		return nil, fmt.Errorf("fetch flags: %w", err)
	}

	next := maps.Clone(s.defaults)
	if next == nil {
		next = make(map[string]bool, len(remote))
	}
	maps.Copy(next, remote)

	s.active.Store(&next)
	s.metrics.RecordFlagRefresh(true)
	return maps.Clone(next), nil
}

// Enabled reports the active value of name; unknown flags are off.
func (s *Service) Enabled(name string) bool {
	return (*s.active.Load())[name]
}

// Active returns a copy of the active set.
func (s *Service) Active() map[string]bool {
	return maps.Clone(*s.active.Load())
}

// Set writes a flag remotely and activates the new set right away.
func (s *Service) Set(ctx context.Context, name string, enabled bool) (map[string]bool, error) {
	if !ValidName(name) {
		return nil, ErrInvalidName
	}
	if err := s.repo.Set(ctx, name, enabled); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"flag": name, "enabled": enabled}).Info("feature flag updated")
	return s.FetchAndActivate(ctx)
}

// --------------------------------------------------
// Scheduled refresh
// --------------------------------------------------

// Schedule refreshes the active set on expr (standard cron syntax or
// descriptors such as "@every 5m"). The returned scheduler is already
// running; stop it on shutdown.
func (s *Service) Schedule(expr string, timeout time.Duration) (*cron.Cron, error) {
	if expr == "" {
		expr = DefaultRefresh
	}

	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
		cron.Recover(cron.DiscardLogger),
	))
	_, err := c.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		active, err := s.FetchAndActivate(ctx)
		if err != nil {
			s.log.WithError(err).Warn("feature flag refresh failed, keeping previous values")
			return
		}
		s.log.WithField("count", len(active)).Debug("feature flags refreshed")
	})
	if err != nil {
		return nil, fmt.Errorf("schedule flag refresh %q: %w", expr, err)
	}

	c.Start()
	return c, nil
}
