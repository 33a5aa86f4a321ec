package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shophub/internal/models"
)

// Memory is a mutex-guarded Store that enforces the same constraints as the
// MongoDB indexes: unique email and a single owner.
type Memory struct {
	mu       sync.RWMutex
	accounts map[primitive.ObjectID]models.Account
	products map[primitive.ObjectID]models.Product
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[primitive.ObjectID]models.Account),
		products: make(map[primitive.ObjectID]models.Product),
	}
}

func (m *Memory) Ping(context.Context) error  { return nil }
func (m *Memory) Close(context.Context) error { return nil }

func (m *Memory) CreateAccount(_ context.Context, a *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a.Role == models.RoleOwner {
		for _, existing := range m.accounts {
			if existing.Role == models.RoleOwner {
				return ErrOwnerExists
			}
		}
	}
	for _, existing := range m.accounts {
		if existing.Email == a.Email {
			return ErrDuplicateEmail
		}
	}

	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.Cart == nil {
		a.Cart = []models.CartLine{}
	}
	if a.Wishlist == nil {
		a.Wishlist = []primitive.ObjectID{}
	}
	if a.Orders == nil {
		a.Orders = []primitive.ObjectID{}
	}
	m.accounts[a.ID] = copyAccount(*a)
	return nil
}

func (m *Memory) FindAccountByEmail(_ context.Context, email string) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, a := range m.accounts {
		if a.Email == email {
			found := copyAccount(a)
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) FindAccountByID(_ context.Context, id primitive.ObjectID) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	found := copyAccount(a)
	found.PasswordHash = ""
	return &found, nil
}

func (m *Memory) OwnerExists(context.Context) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, a := range m.accounts {
		if a.Role == models.RoleOwner {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) AddToCart(_ context.Context, accountID, productID primitive.ObjectID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[accountID]
	if !ok {
		return ErrNotFound
	}
	if _, exists := a.CartLine(productID); exists {
		return ErrAlreadyInCart
	}
	a.Cart = append(a.Cart, models.CartLine{ProductID: productID, Quantity: quantity, AddedAt: time.Now()})
	a.UpdatedAt = time.Now()
	m.accounts[accountID] = a
	return nil
}

func (m *Memory) RemoveFromCart(_ context.Context, accountID, productID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[accountID]
	if !ok {
		return ErrNotFound
	}
	a.Cart = withoutProduct(a.Cart, productID)
	m.accounts[accountID] = a
	return nil
}

func (m *Memory) SetCartQuantity(_ context.Context, accountID, productID primitive.ObjectID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[accountID]
	if !ok {
		return ErrNotFound
	}
	for i := range a.Cart {
		if a.Cart[i].ProductID == productID {
			a.Cart[i].Quantity = quantity
			a.UpdatedAt = time.Now()
			m.accounts[accountID] = a
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) RemoveProductFromCarts(_ context.Context, productID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, a := range m.accounts {
		a.Cart = withoutProduct(a.Cart, productID)
		m.accounts[id] = a
	}
	return nil
}

func (m *Memory) CreateProduct(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Rating == 0 {
		p.Rating = models.DefaultRating
	}
	m.products[p.ID] = *p
	return nil
}

func (m *Memory) FindProduct(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.Decorate()
	return &p, nil
}

func (m *Memory) FindProductsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			p.Decorate()
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Memory) ListProducts(_ context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]models.Product, 0, len(m.products))
	for _, p := range m.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		matched = append(matched, p)
	}

	sort.SliceStable(matched, productLess(matched, filter.Sort))

	total := int64(len(matched))
	start := max(filter.Skip, 0)
	if start > total {
		start = total
	}
	end := total
	if filter.Limit > 0 && start+filter.Limit < total {
		end = start + filter.Limit
	}

	page := matched[start:end]
	for i := range page {
		page[i].Decorate()
	}
	return page, total, nil
}

func (m *Memory) Categories(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, p := range m.products {
		if _, ok := seen[p.Category]; ok || p.Category == "" {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) UpdateProduct(_ context.Context, id primitive.ObjectID, u ProductUpdate) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}

	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&p.Name, u.Name)
	setString(&p.Description, u.Description)
	setString(&p.Category, u.Category)
	setString(&p.BgColor, u.BgColor)
	setString(&p.TextColor, u.TextColor)
	setString(&p.PanelColor, u.PanelColor)
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Discount != nil {
		p.Discount = *u.Discount
	}
	if len(u.Image) > 0 {
		p.Image = u.Image
		p.ImageType = u.ImageType
	}
	p.UpdatedAt = time.Now()
	m.products[id] = p

	p.Decorate()
	return &p, nil
}

func (m *Memory) DeleteProduct(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func productLess(products []models.Product, sortBy string) func(i, j int) bool {
	return func(i, j int) bool {
		a, b := products[i], products[j]
		switch sortBy {
		case SortPriceAsc:
			if a.Price != b.Price {
				return a.Price < b.Price
			}
		case SortPriceDesc:
			if a.Price != b.Price {
				return a.Price > b.Price
			}
		case SortName:
			if a.Name != b.Name {
				return strings.ToLower(a.Name) < strings.ToLower(b.Name)
			}
		case SortRating:
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.Hex() > b.ID.Hex()
	}
}

func withoutProduct(lines []models.CartLine, productID primitive.ObjectID) []models.CartLine {
	out := make([]models.CartLine, 0, len(lines))
	for _, line := range lines {
		if line.ProductID != productID {
			out = append(out, line)
		}
	}
	return out
}

func copyAccount(a models.Account) models.Account {
	a.Cart = append([]models.CartLine{}, a.Cart...)
	a.Wishlist = append([]primitive.ObjectID{}, a.Wishlist...)
	a.Orders = append([]primitive.ObjectID{}, a.Orders...)
	return a
}
