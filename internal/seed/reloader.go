package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// Reloader runs an Importer on start, then on every tick and manual trigger.
type Reloader struct {
	importer      *Importer
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	done          chan struct{}
	manualTrigger chan struct{}
}

// NewReloader creates a reloader. A zero interval disables periodic imports;
// manualTrigger may be nil.
func NewReloader(importer *Importer, log logger.Logger, interval time.Duration, manualTrigger chan struct{}) *Reloader {
	return &Reloader{
		importer:      importer,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start imports immediately and then keeps importing in the background until
// Stop is called or ctx ends.
func (r *Reloader) Start(ctx context.Context) error {
	if _, err := r.importer.Import(ctx); err != nil {
		close(r.done)
		return fmt.Errorf("initial bookmark import failed: %w", err)
	}

	var (
		ticker *time.Ticker
		tick   <-chan time.Time
	)
	if r.interval > 0 {
		ticker = time.NewTicker(r.interval)
		tick = ticker.C
	}

	go func() {
		defer close(r.done)
		if ticker != nil {
			defer ticker.Stop()
		}
		for {
			select {
			case <-tick:
				r.reload(ctx)
			case <-r.manualTrigger:
				r.logger.Info("manual bookmark import triggered")
				r.reload(ctx)
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop ends the background loop and waits for it to exit.
func (r *Reloader) Stop() {
	close(r.stopCh)
	<-r.done
}

func (r *Reloader) reload(ctx context.Context) {
	if _, err := r.importer.Import(ctx); err != nil {
		r.logger.Error("failed to import bookmarks", logger.Error(err))
	}
}
