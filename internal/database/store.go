package database

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"shophub/internal/store"
)

// Store implements store.Store on top of a MongoDB database.
type Store struct {
	client   *mongo.Client
	db       *mongo.Database
	accounts *mongo.Collection
	products *mongo.Collection
	log      *zap.Logger
}

var _ store.Store = (*Store)(nil)

func NewStore(client *mongo.Client, dbName string, log *zap.Logger) *Store {
	db := client.Database(dbName)
	return &Store{
		client:   client,
		db:       db,
		accounts: db.Collection(accountsCollection),
		products: db.Collection(productsCollection),
		log:      log,
	}
}

func (s *Store) Database() *mongo.Database { return s.db }

// EnsureIndexes must succeed before serving: account uniqueness depends on it.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if err := EnsureAccountIndexes(ctx, s.db, s.log); err != nil {
		return err
	}
	if err := EnsureProductIndexes(ctx, s.db, s.log); err != nil {
		s.log.Warn("product index warning", zap.Error(err))
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}

// duplicateKey maps unique index violations onto store errors.
func duplicateKey(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}
	if strings.Contains(err.Error(), ownerIndexName) {
		return store.ErrOwnerExists
	}
	return store.ErrDuplicateEmail
}
