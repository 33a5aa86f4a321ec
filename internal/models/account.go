package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleOwner = "owner"
)

// CartLine is one product in an account's cart. A product appears at most once.
type CartLine struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	AddedAt   time.Time          `bson:"addedAt" json:"addedAt"`
}

// Account is either the single store owner or a shopper.
type Account struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	FullName     string               `bson:"fullName" json:"fullName"`
	Email        string               `bson:"email" json:"email"`
	PasswordHash string               `bson:"passwordHash" json:"-"`
	Role         string               `bson:"role" json:"role"`
	Location     string               `bson:"location,omitempty" json:"location,omitempty"`
	ContactNo    string               `bson:"contactNo,omitempty" json:"contactNo,omitempty"`
	GSTNo        string               `bson:"gstNo,omitempty" json:"gstNo,omitempty"`
	Cart         []CartLine           `bson:"cart" json:"cart"`
	Wishlist     []primitive.ObjectID `bson:"wishlist" json:"wishlist"`
	Orders       []primitive.ObjectID `bson:"orders" json:"orders"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (a *Account) IsOwner() bool {
	return a != nil && a.Role == RoleOwner
}

func (a *Account) CartLine(productID primitive.ObjectID) (CartLine, bool) {
	for _, line := range a.Cart {
		if line.ProductID == productID {
			return line, true
		}
	}
	return CartLine{}, false
}

// AccountSummary is the credential-free view returned to clients.
type AccountSummary struct {
	ID        string `json:"id"`
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Location  string `json:"location,omitempty"`
	ContactNo string `json:"contactNo,omitempty"`
	GSTNo     string `json:"gstNo,omitempty"`
}

func (a *Account) Summary() AccountSummary {
	return AccountSummary{
		ID:        a.ID.Hex(),
		FullName:  a.FullName,
		Email:     a.Email,
		Role:      a.Role,
		Location:  a.Location,
		ContactNo: a.ContactNo,
		GSTNo:     a.GSTNo,
	}
}
