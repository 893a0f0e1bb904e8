package domain

import (
	"context"
	"time"

	"github.com/jordanlanch/leadtoorder/pkg/models"
)

// CacheRepository defines the key-value operations behind the echo store and
// the token blacklist. Get returns cache.ErrCacheMiss for absent keys.
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

// SheetClient defines the remote spreadsheet operations. Rows are returned as
// stringified cells in sheet column order.
type SheetClient interface {
	GetLeads(ctx context.Context) ([][]string, error)
	GetFollowUps(ctx context.Context) ([][]string, error)
	GetEnquiries(ctx context.Context) ([][]string, error)
	GetLastLeadNo(ctx context.Context) (string, error)
	Insert(ctx context.Context, sheetName string, row []string) error
	InsertFollowUp(ctx context.Context, f models.FollowUp) error
	LoginUser(ctx context.Context, username, password string) (string, error)
}

// Notifier defines outbound team notifications
type Notifier interface {
	NotifyNewLead(ctx context.Context, lead models.Lead) error
	NotifyUnsynced(ctx context.Context, kind, ref string, cause error) error
}
