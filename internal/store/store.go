// Package store defines the persistence contracts for accounts and products.
// The MongoDB implementation lives in internal/database; Memory is used for
// local runs without a database and by tests.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shophub/internal/models"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrOwnerExists    = errors.New("owner already exists")
	ErrAlreadyInCart  = errors.New("product already in cart")
)

const (
	SortNewest    = ""
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortName      = "name"
	SortRating    = "rating"
)

func ValidSort(sort string) bool {
	switch sort {
	case SortNewest, SortPriceAsc, SortPriceDesc, SortName, SortRating:
		return true
	}
	return false
}

type ProductFilter struct {
	Category string
	Search   string
	Sort     string
	Skip     int64
	Limit    int64
}

// ProductUpdate carries the fields to change; nil pointers and an empty Image are left untouched.
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *float64
	Discount    *float64
	Category    *string
	BgColor     *string
	TextColor   *string
	PanelColor  *string
	Image       []byte
	ImageType   string
}

func (u ProductUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Price == nil && u.Discount == nil &&
		u.Category == nil && u.BgColor == nil && u.TextColor == nil && u.PanelColor == nil &&
		len(u.Image) == 0
}

type Accounts interface {
	// CreateAccount assigns the new id to a. It returns ErrDuplicateEmail or
	// ErrOwnerExists when a uniqueness constraint rejects the write.
	CreateAccount(ctx context.Context, a *models.Account) error
	FindAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	// FindAccountByID never returns the password hash.
	FindAccountByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error)
	OwnerExists(ctx context.Context) (bool, error)

	AddToCart(ctx context.Context, accountID, productID primitive.ObjectID, quantity int) error
	// RemoveFromCart is a no-op when the product is not in the cart.
	RemoveFromCart(ctx context.Context, accountID, productID primitive.ObjectID) error
	SetCartQuantity(ctx context.Context, accountID, productID primitive.ObjectID, quantity int) error
	RemoveProductFromCarts(ctx context.Context, productID primitive.ObjectID) error
}

type Products interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	FindProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindProductsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	// ListProducts returns one page of matches plus the total match count.
	ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	Categories(ctx context.Context) ([]string, error)
	UpdateProduct(ctx context.Context, id primitive.ObjectID, update ProductUpdate) (*models.Product, error)
	DeleteProduct(ctx context.Context, id primitive.ObjectID) error
}

type Store interface {
	Accounts
	Products
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
