// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	adminstore "github.com/dalemusser/congregate/internal/app/store/admins"
	eventstore "github.com/dalemusser/congregate/internal/app/store/events"
	outboxstore "github.com/dalemusser/congregate/internal/app/store/outbox"
	"github.com/dalemusser/congregate/internal/app/system/approval"
	"github.com/dalemusser/congregate/internal/app/system/mailer"
	"github.com/dalemusser/congregate/internal/app/system/normalize"
	"github.com/dalemusser/congregate/internal/app/system/timeouts"
	"github.com/dalemusser/congregate/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// It applies the configured timeouts, seeds or rotates the admin credential,
// seeds the default events and starts the outbox delivery worker.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{Notify: appCfg.NotifyTimeout})

	if err := ensureAdmin(ctx, deps, appCfg.AdminEmail, appCfg.AdminPIN, appCfg.PINHashCost, logger); err != nil {
		return err
	}

	if appCfg.SeedEvents {
		seedCtx, cancel := context.WithTimeout(ctx, timeouts.Medium())
		n, err := eventstore.New(deps.MongoDatabase).SeedDefaults(seedCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("seed events: %w", err)
		}
		if n > 0 {
			logger.Info("seeded default events", zap.Int("count", n))
		}
	}

	if appCfg.OutboxEnabled && deps.Background != nil {
		w := workers.NewOutboxDelivery(
			outboxstore.New(deps.MongoDatabase),
			newMailer(appCfg, logger),
			workers.DeliveryConfig{
				Interval:    appCfg.OutboxInterval,
				MaxAttempts: appCfg.OutboxMaxAttempts,
			},
			logger,
		)
		w.Start()
		deps.Background.Outbox = w
	}
	return nil
}

// ensureAdmin makes the configured email the only admin credential. It creates
// the record, or rotates its PIN hash when the configured PIN no longer
// matches, then revokes every admin with a different email. An unchanged PIN
// is left alone.
func ensureAdmin(ctx context.Context, deps DBDeps, email, pin string, cost int, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	admins := adminstore.New(deps.MongoDatabase)
	email = normalize.Email(email)
	pin = normalize.PIN(pin)

	existing, err := admins.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		hash, err := approval.HashPIN(pin, cost)
		if err != nil {
			return fmt.Errorf("hash admin pin: %w", err)
		}
		a, err := admins.Create(ctx, email, hash)
		if err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		logger.Info("admin credential created", zap.String("admin_id", a.ID.Hex()))
	case err != nil:
		return fmt.Errorf("lookup admin: %w", err)
	case !approval.CheckPIN(existing.PINHash, pin):
		hash, err := approval.HashPIN(pin, cost)
		if err != nil {
			return fmt.Errorf("hash admin pin: %w", err)
		}
		if err := admins.Rotate(ctx, existing.ID, hash); err != nil {
			return fmt.Errorf("rotate admin pin: %w", err)
		}
		logger.Info("admin credential rotated", zap.String("admin_id", existing.ID.Hex()))
	}

	all, err := admins.List(ctx)
	if err != nil {
		return fmt.Errorf("list admins: %w", err)
	}
	for _, a := range all {
		if a.Email == email {
			continue
		}
		if err := admins.Delete(ctx, a.ID); err != nil {
			return fmt.Errorf("revoke admin %s: %w", a.ID.Hex(), err)
		}
		logger.Info("admin credential revoked", zap.String("admin_id", a.ID.Hex()))
	}
	return nil
}

func newMailer(appCfg AppConfig, logger *zap.Logger) *mailer.Mailer {
	return mailer.New(mailer.Config{
		Host:        appCfg.MailSMTPHost,
		Port:        appCfg.MailSMTPPort,
		Username:    appCfg.MailSMTPUser,
		Password:    appCfg.MailSMTPPass,
		From:        appCfg.MailFrom,
		FromName:    appCfg.MailFromName,
		ImplicitTLS: appCfg.MailImplicitTLS,
	}, logger)
}
