package upstreamsim

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/okian/growthboard/pkg/logger"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Run serves the simulator on addr until ctx is cancelled.
func Run(ctx context.Context, addr string, cfg Config) error {
	sim := New(cfg)
	srv := &http.Server{
		Addr:              addr,
		Handler:           sim.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	log := logger.Named("upstreamsim")
	log.Info(ctx, "upstream simulator listening",
		logger.String("addr", addr),
		logger.Int("professions", len(sim.profs)),
		logger.String("failing", strings.Join(cfg.Fail, ",")),
		logger.String("empty", strings.Join(cfg.Empty, ",")),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info(context.Background(), "upstream simulator stopped")
	return nil
}

// SplitList parses a comma separated flag value.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
