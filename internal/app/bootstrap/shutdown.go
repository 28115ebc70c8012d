// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	outboxstore "github.com/dalemusser/congregate/internal/app/store/outbox"
	"github.com/dalemusser/congregate/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops background work and then tears down DB connections.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if bg := deps.Background; bg != nil {
		if bg.Outbox != nil {
			logger.Info("stopping outbox delivery worker")
			bg.Outbox.Stop()
		}
		if bg.LoginLimiter != nil {
			bg.LoginLimiter.Close()
		}
		if bg.RegisterLimit != nil {
			bg.RegisterLimit.Close()
		}
	}

	if appCfg.OutboxEnabled && deps.MongoDatabase != nil {
		logOutboxBacklog(ctx, outboxstore.New(deps.MongoDatabase), logger)
	}

	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}

// logOutboxBacklog reports queued and abandoned notifications so an operator
// can tell whether mail is left behind by this shutdown.
func logOutboxBacklog(ctx context.Context, store *outboxstore.Store, logger *zap.Logger) {
	pending, err := store.CountByStatus(ctx, models.OutboxPending)
	if err != nil {
		logger.Warn("outbox backlog count failed", zap.Error(err))
		return
	}
	failed, err := store.CountByStatus(ctx, models.OutboxFailed)
	if err != nil {
		logger.Warn("outbox backlog count failed", zap.Error(err))
		return
	}
	logger.Info("outbox backlog", zap.Int64("pending", pending), zap.Int64("failed", failed))
}
