package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"shophub/internal/models"
)

const (
	emailIndexName = "email_unique"
	ownerIndexName = "owner_singleton"
)

// EnsureAccountIndexes installs the account uniqueness constraints:
// emails are unique and at most one document may carry role "owner".
func EnsureAccountIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	indexes := db.Collection(accountsCollection).Indexes()

	specs := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName(emailIndexName).SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "role", Value: 1}},
			Options: options.Index().
				SetName(ownerIndexName).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"role": models.RoleOwner}),
		},
		{
			Keys:    bson.D{{Key: "cart.productId", Value: 1}},
			Options: options.Index().SetName("cart_product"),
		},
	}

	log.Info("creating account indexes")
	names, err := indexes.CreateMany(ctx, specs)
	if err != nil {
		log.Error("account index creation failed", zap.Error(err))
		return err
	}
	log.Info("account indexes ready", zap.Strings("indexes", names))
	return nil
}

func EnsureProductIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	indexes := db.Collection(productsCollection).Indexes()

	specs := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("category_createdAt"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("createdAt_desc"),
		},
	}

	log.Info("creating product indexes")
	names, err := indexes.CreateMany(ctx, specs)
	if err != nil {
		log.Error("product index creation failed", zap.Error(err))
		return err
	}
	log.Info("product indexes ready", zap.Strings("indexes", names))
	return nil
}
