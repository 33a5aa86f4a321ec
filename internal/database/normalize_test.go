package database

import (
	"errors"
	"math"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"shophub/internal/models"
	"shophub/internal/store"
)

func TestNormalizeProductDocumentLegacyTypes(t *testing.T) {
	id := primitive.NewObjectID()
	product, err := normalizeProductDocument(bson.M{
		"_id":      id,
		"name":     "Tote",
		"price":    "499",
		"discount": int32(10),
		"category": bson.A{"bags", "canvas"},
		"image":    primitive.Binary{Data: []byte("GIF89a")},
	})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}
	if product.ID != id {
		t.Fatalf("expected id %s, got %s", id.Hex(), product.ID.Hex())
	}
	if product.Price != 499 || product.Discount != 10 {
		t.Fatalf("expected price=499 discount=10, got price=%v discount=%v", product.Price, product.Discount)
	}
	if product.Category != "bags" {
		t.Fatalf("expected first category, got %q", product.Category)
	}
	if product.Rating != models.DefaultRating {
		t.Fatalf("expected default rating, got %v", product.Rating)
	}
	if product.FinalPrice != 449.1 {
		t.Fatalf("expected final price 449.1, got %v", product.FinalPrice)
	}
	if string(product.Image) != "GIF89a" || product.ImageURI == "" {
		t.Fatalf("expected image bytes and data uri, got %q %q", product.Image, product.ImageURI)
	}
}

func TestNormalizeProductDocumentKeepsStoredRating(t *testing.T) {
	product, err := normalizeProductDocument(bson.M{"name": "Cap", "price": 20.0, "rate": int64(3), "category": "hats"})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}
	if product.Rating != 3 || product.Category != "hats" {
		t.Fatalf("unexpected product: %+v", product)
	}
}

func TestNormalizeProductDocumentZeroesNonFiniteNumbers(t *testing.T) {
	product, err := normalizeProductDocument(bson.M{"name": "Cap", "price": math.Inf(1), "discount": "NaN", "category": "hats"})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}
	if product.Price != 0 || product.Discount != 0 || product.FinalPrice != 0 {
		t.Fatalf("expected zeroed numbers, got %+v", product)
	}
}

func TestDuplicateKeyClassification(t *testing.T) {
	ownerErr := mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: "E11000 duplicate key error collection: ecommerce.accounts index: owner_singleton dup key: { role: \"owner\" }",
	}}}
	if got := duplicateKey(ownerErr); !errors.Is(got, store.ErrOwnerExists) {
		t.Fatalf("expected ErrOwnerExists, got %v", got)
	}

	emailErr := mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: "E11000 duplicate key error collection: ecommerce.accounts index: email_unique dup key: { email: \"a@b.c\" }",
	}}}
	if got := duplicateKey(emailErr); !errors.Is(got, store.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", got)
	}

	other := errors.New("boom")
	if got := duplicateKey(other); got != other {
		t.Fatalf("expected passthrough, got %v", got)
	}
}

func TestNotFoundMapping(t *testing.T) {
	if !errors.Is(notFound(mongo.ErrNoDocuments), store.ErrNotFound) {
		t.Fatal("expected ErrNoDocuments to map to store.ErrNotFound")
	}
}
