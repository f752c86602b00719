package refresh

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultSweepInterval = time.Hour
	sweepTimeout         = 30 * time.Second
)

// StartSweeper deletes expired refresh tokens every interval until ctx is
// cancelled. The returned channel is closed once the sweeper has stopped.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) <-chan struct{} {
	if interval <= 0 {
		interval = defaultSweepInterval
	}

	done := make(chan struct{})
	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tickCtx, cancel := context.WithTimeout(ctx, sweepTimeout)
				n, err := s.SweepExpired(tickCtx)
				cancel()
				if err != nil {
					log.Err(err).Msg("Refresh token sweep failed")
					continue
				}
				if n > 0 {
					log.Info().Int64("deleted", n).Msg("Swept expired refresh tokens")
				}
			}
		}
	}()
	return done
}
