package maindb

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sentinel errors for callers that need to map storage failures to
// HTTP statuses
var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientCoins = errors.New("insufficient coins")
	ErrAlreadyOwned      = errors.New("item already owned")
)

// DBTX is an interface for database operations
// it allows to swap between pool and transactions
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserStore defines all user-related database operations
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// StoreFront defines the storefront catalog and purchase operations
type StoreFront interface {
	ListStoreItems(ctx context.Context) ([]*StoreItem, error)
	PurchaseItem(ctx context.Context, userID, itemID uuid.UUID) (*Purchase, error)
	ListUserPurchases(ctx context.Context, userID uuid.UUID) ([]*Purchase, error)
}

// PostgresStore is a main database store. It keeps the pool itself so
// purchase flows can run inside a transaction.
type PostgresStore struct {
	db   DBTX
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new store
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		db:   pool,
		pool: pool,
	}
}

// CreatePostgresPool creates and pings a connection pool
func CreatePostgresPool(parentCtx context.Context, dburl string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(parentCtx, time.Second*3)
	defer cancel()

	pool, err := pgxpool.New(ctx, dburl)
	if err != nil {
		return nil, err
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}
