package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shophub/internal/models"
)

func newAccount(email, role string) *models.Account {
	return &models.Account{FullName: "Test User", Email: email, PasswordHash: "hash", Role: role}
}

func TestMemoryRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	first := newAccount("a@b.c", models.RoleUser)
	require.NoError(t, m.CreateAccount(ctx, first))
	assert.False(t, first.ID.IsZero())

	err := m.CreateAccount(ctx, newAccount("a@b.c", models.RoleUser))
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	stored, err := m.FindAccountByEmail(ctx, "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, "hash", stored.PasswordHash)
}

func TestMemoryOwnerCheckWinsOverDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.CreateAccount(ctx, newAccount("owner@b.c", models.RoleOwner)))
	for i := 0; i < 20; i++ {
		require.NoError(t, m.CreateAccount(ctx, newAccount(fmt.Sprintf("user%d@b.c", i), models.RoleUser)))
	}

	for i := 0; i < 20; i++ {
		err := m.CreateAccount(ctx, newAccount(fmt.Sprintf("user%d@b.c", i), models.RoleOwner))
		assert.ErrorIs(t, err, ErrOwnerExists)
	}
}

func TestMemoryEmailIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.CreateAccount(ctx, newAccount("A@b.c", models.RoleUser)))
	require.NoError(t, m.CreateAccount(ctx, newAccount("a@b.c", models.RoleUser)))

	_, err := m.FindAccountByEmail(ctx, "A@B.C")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySingleOwnerUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- m.CreateAccount(ctx, newAccount(primitive.NewObjectID().Hex()+"@shop.io", models.RoleOwner))
		}()
	}
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, ErrOwnerExists)
	}
	assert.Equal(t, 1, created)

	exists, err := m.OwnerExists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryFindByIDOmitsHash(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	a := newAccount("a@b.c", models.RoleUser)
	require.NoError(t, m.CreateAccount(ctx, a))

	found, err := m.FindAccountByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, found.PasswordHash)

	_, err = m.FindAccountByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCartMembership(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	a := newAccount("a@b.c", models.RoleUser)
	require.NoError(t, m.CreateAccount(ctx, a))
	first, second := primitive.NewObjectID(), primitive.NewObjectID()

	require.NoError(t, m.AddToCart(ctx, a.ID, first, 1))
	require.NoError(t, m.AddToCart(ctx, a.ID, second, 1))
	assert.ErrorIs(t, m.AddToCart(ctx, a.ID, first, 1), ErrAlreadyInCart)

	found, err := m.FindAccountByID(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, found.Cart, 2)
	assert.Equal(t, first, found.Cart[0].ProductID)
	assert.Equal(t, second, found.Cart[1].ProductID)

	require.NoError(t, m.RemoveFromCart(ctx, a.ID, primitive.NewObjectID()))
	found, _ = m.FindAccountByID(ctx, a.ID)
	assert.Len(t, found.Cart, 2)

	require.NoError(t, m.SetCartQuantity(ctx, a.ID, second, 4))
	assert.ErrorIs(t, m.SetCartQuantity(ctx, a.ID, primitive.NewObjectID(), 4), ErrNotFound)

	require.NoError(t, m.RemoveFromCart(ctx, a.ID, first))
	found, _ = m.FindAccountByID(ctx, a.ID)
	require.Len(t, found.Cart, 1)
	assert.Equal(t, 4, found.Cart[0].Quantity)

	assert.ErrorIs(t, m.AddToCart(ctx, primitive.NewObjectID(), first, 1), ErrNotFound)
}

func TestMemoryRemoveProductFromCarts(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	a := newAccount("a@b.c", models.RoleUser)
	b := newAccount("b@b.c", models.RoleUser)
	require.NoError(t, m.CreateAccount(ctx, a))
	require.NoError(t, m.CreateAccount(ctx, b))
	pid := primitive.NewObjectID()
	require.NoError(t, m.AddToCart(ctx, a.ID, pid, 1))
	require.NoError(t, m.AddToCart(ctx, b.ID, pid, 2))

	require.NoError(t, m.RemoveProductFromCarts(ctx, pid))

	for _, id := range []primitive.ObjectID{a.ID, b.ID} {
		found, err := m.FindAccountByID(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, found.Cart)
	}
}

func TestMemoryListProducts(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range []models.Product{
		{Name: "Leather Bag", Price: 300, Category: "bags"},
		{Name: "Canvas Bag", Price: 100, Category: "bags", Rating: 4.9},
		{Name: "Wallet", Price: 50, Category: "accessories"},
	} {
		p.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, m.CreateProduct(ctx, &p))
	}

	all, total, err := m.ListProducts(ctx, ProductFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, "Wallet", all[0].Name)
	assert.Equal(t, models.DefaultRating, all[0].Rating)

	bags, total, err := m.ListProducts(ctx, ProductFilter{Category: "bags", Sort: SortPriceAsc})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "Canvas Bag", bags[0].Name)

	found, _, err := m.ListProducts(ctx, ProductFilter{Search: "LEATHER"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Leather Bag", found[0].Name)

	page, total, err := m.ListProducts(ctx, ProductFilter{Sort: SortName, Skip: 1, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, "Leather Bag", page[0].Name)

	past, total, err := m.ListProducts(ctx, ProductFilter{Skip: 10, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Empty(t, past)

	negative, _, err := m.ListProducts(ctx, ProductFilter{Sort: SortName, Skip: -4, Limit: 2})
	require.NoError(t, err)
	require.Len(t, negative, 2)
	assert.Equal(t, "Canvas Bag", negative[0].Name)

	categories, err := m.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"accessories", "bags"}, categories)
}

func TestMemoryUpdateAndDeleteProduct(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	p := &models.Product{Name: "Bag", Price: 100, Category: "bags", Image: []byte("old")}
	require.NoError(t, m.CreateProduct(ctx, p))

	price := 80.0
	updated, err := m.UpdateProduct(ctx, p.ID, ProductUpdate{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 80.0, updated.Price)
	assert.Equal(t, "Bag", updated.Name)
	assert.Equal(t, []byte("old"), updated.Image)

	_, err = m.UpdateProduct(ctx, primitive.NewObjectID(), ProductUpdate{Price: &price})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.DeleteProduct(ctx, p.ID))
	assert.ErrorIs(t, m.DeleteProduct(ctx, p.ID), ErrNotFound)
	_, err = m.FindProduct(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductUpdateIsEmpty(t *testing.T) {
	assert.True(t, ProductUpdate{}.IsEmpty())
	name := "x"
	assert.False(t, ProductUpdate{Name: &name}.IsEmpty())
	assert.False(t, ProductUpdate{Image: []byte{1}}.IsEmpty())
}

func TestValidSort(t *testing.T) {
	assert.True(t, ValidSort(""))
	assert.True(t, ValidSort(SortRating))
	assert.False(t, ValidSort("random"))
}
