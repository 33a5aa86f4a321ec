package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shophub/internal/models"
	"shophub/internal/store"
)

func (s *Store) CreateAccount(ctx context.Context, a *models.Account) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	if a.Cart == nil {
		a.Cart = []models.CartLine{}
	}
	if a.Wishlist == nil {
		a.Wishlist = []primitive.ObjectID{}
	}
	if a.Orders == nil {
		a.Orders = []primitive.ObjectID{}
	}

	res, err := s.accounts.InsertOne(ctx, a)
	if err != nil {
		return duplicateKey(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		a.ID = id
	}
	return nil
}

func (s *Store) FindAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var a models.Account
	if err := s.accounts.FindOne(ctx, bson.M{"email": email}).Decode(&a); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (s *Store) FindAccountByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.FindOne().SetProjection(bson.M{"passwordHash": 0})

	var a models.Account
	if err := s.accounts.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&a); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (s *Store) OwnerExists(ctx context.Context) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	count, err := s.accounts.CountDocuments(ctx, bson.M{"role": models.RoleOwner}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddToCart pushes the line only when the product is not already present, so
// concurrent adds of the same product cannot produce two lines.
func (s *Store) AddToCart(ctx context.Context, accountID, productID primitive.ObjectID, quantity int) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	now := time.Now()
	res, err := s.accounts.UpdateOne(ctx,
		bson.M{
			"_id":            accountID,
			"cart.productId": bson.M{"$ne": productID},
		},
		bson.M{
			"$push": bson.M{"cart": models.CartLine{ProductID: productID, Quantity: quantity, AddedAt: now}},
			"$set":  bson.M{"updatedAt": now},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	exists, err := s.accounts.CountDocuments(ctx, bson.M{"_id": accountID}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if exists == 0 {
		return store.ErrNotFound
	}
	return store.ErrAlreadyInCart
}

func (s *Store) RemoveFromCart(ctx context.Context, accountID, productID primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := s.accounts.UpdateOne(ctx,
		bson.M{"_id": accountID},
		bson.M{
			"$pull": bson.M{"cart": bson.M{"productId": productID}},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) SetCartQuantity(ctx context.Context, accountID, productID primitive.ObjectID, quantity int) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := s.accounts.UpdateOne(ctx,
		bson.M{"_id": accountID, "cart.productId": productID},
		bson.M{"$set": bson.M{
			"cart.$.quantity": quantity,
			"updatedAt":       time.Now(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) RemoveProductFromCarts(ctx context.Context, productID primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := s.accounts.UpdateMany(ctx,
		bson.M{"cart.productId": productID},
		bson.M{"$pull": bson.M{"cart": bson.M{"productId": productID}}},
	)
	return err
}
