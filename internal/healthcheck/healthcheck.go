package healthcheck

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/MyelinBots/guildbot-go/config"
	"github.com/rs/zerolog"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StartHealthcheck serves /healthz until ctx is done. A port of 0 disables it.
func StartHealthcheck(ctx context.Context, cfg config.AppConfig, db Pinger, logger zerolog.Logger) {
	if cfg.HealthPort == 0 {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/healthz", HealthCheckHandler(db))
	srv := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(cfg.HealthPort)),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("healthcheck server error")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

// HealthCheckHandler answers 200 OK while the database answers pings and 503
// otherwise.
func HealthCheckHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}
