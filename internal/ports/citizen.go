package ports

import (
	"context"

	"dga_gateway/internal/models"
)

type TokenBroker interface {
	AgentID() string
	ObtainToken(ctx context.Context) (string, error)
}

type CitizenRetriever interface {
	Retrieve(ctx context.Context, token, appID, mToken string) (models.CitizenRecord, error)
}

type Notifier interface {
	Notify(ctx context.Context, n models.Notification) (any, error)
}

// RecordStore persists citizen records. Upsert must be a single atomic
// operation keyed on CitizenID.
type RecordStore interface {
	Upsert(ctx context.Context, rec models.CitizenRecord) (models.CitizenRecord, error)
	List(ctx context.Context, limit int64) ([]models.CitizenRecord, error)
	Ping(ctx context.Context) error
}

// TokenCache holds the most recent broker token. ok is false on a miss.
type TokenCache interface {
	Get(ctx context.Context) (token string, ok bool, err error)
	Set(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}
