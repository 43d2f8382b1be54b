// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"sync"

	"github.com/dalemusser/himatika/internal/app/store/sessions"
	"github.com/dalemusser/himatika/internal/app/system/timeouts"
	"github.com/dalemusser/himatika/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

var (
	workersMu      sync.Mutex
	sessionCleanup *workers.SessionCleanup
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It
// applies timeout overrides and starts the session cleanup worker, which
// Shutdown stops.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(logger); n > 0 {
		logger.Info("database timeouts overridden from environment", zap.Int("count", n))
	}

	workersMu.Lock()
	defer workersMu.Unlock()
	if sessionCleanup == nil {
		sessionCleanup = workers.NewSessionCleanup(sessions.New(deps.MongoDatabase), logger, appCfg.SessionCleanupInterval)
		sessionCleanup.Start()
	}
	return nil
}

func stopWorkers() {
	workersMu.Lock()
	defer workersMu.Unlock()
	if sessionCleanup != nil {
		sessionCleanup.Stop()
		sessionCleanup = nil
	}
}
