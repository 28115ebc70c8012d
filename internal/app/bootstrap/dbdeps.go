// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/congregate/internal/app/system/ratelimit"
	"github.com/dalemusser/congregate/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Background is allocated by ConnectDB and filled by Startup and
	// BuildHandler so Shutdown can stop what they started.
	Background *Background
}

// Background tracks long-lived workers and limiters.
type Background struct {
	Outbox        *workers.OutboxDelivery
	LoginLimiter  *ratelimit.LoginLimiter
	RegisterLimit *ratelimit.Limiter
}
