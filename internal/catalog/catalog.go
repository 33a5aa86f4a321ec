// Package catalog loads product fixtures from YAML and inserts them through
// the store, optionally bootstrapping the store owner.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"shophub/internal/auth"
	"shophub/internal/models"
	"shophub/internal/pricing"
	"shophub/internal/store"
)

const (
	defaultBgColor    = "#ffffff"
	defaultTextColor  = "#222222"
	defaultPanelColor = "#f0f0f0"
)

type File struct {
	Owner    *OwnerFixture    `yaml:"owner,omitempty"`
	Products []ProductFixture `yaml:"products"`
}

type OwnerFixture struct {
	FullName string `yaml:"fullName"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	GSTNo    string `yaml:"gstNo,omitempty"`
}

type ProductFixture struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description,omitempty"`
	Price       float64 `yaml:"price"`
	Discount    float64 `yaml:"discount,omitempty"`
	Category    string  `yaml:"category"`
	BgColor     string  `yaml:"bgColor,omitempty"`
	TextColor   string  `yaml:"textColor,omitempty"`
	PanelColor  string  `yaml:"panelColor,omitempty"`
	Image       string  `yaml:"image,omitempty"`
	Rating      float64 `yaml:"rating,omitempty"`
}

// LoadFile reads and parses a catalog file. Image paths stay relative to the file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	applyDefaults(&f)

	for i, p := range f.Products {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("products[%d] %q: %w", i, p.Name, err)
		}
	}
	return &f, nil
}

func applyDefaults(f *File) {
	for i := range f.Products {
		p := &f.Products[i]
		p.Name = strings.TrimSpace(p.Name)
		p.Category = strings.TrimSpace(p.Category)
		if p.BgColor == "" {
			p.BgColor = defaultBgColor
		}
		if p.TextColor == "" {
			p.TextColor = defaultTextColor
		}
		if p.PanelColor == "" {
			p.PanelColor = defaultPanelColor
		}
		if p.Rating == 0 {
			p.Rating = models.DefaultRating
		}
	}
	if f.Owner != nil {
		f.Owner.Email = strings.TrimSpace(f.Owner.Email)
	}
}

func (p ProductFixture) Validate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.Category == "" {
		return errors.New("category is required")
	}
	if err := pricing.ValidatePrice(p.Price); err != nil {
		return err
	}
	return pricing.ValidateDiscount(p.Discount)
}

// Product builds the document to insert, reading the image relative to baseDir.
func (p ProductFixture) Product(baseDir string, now time.Time) (*models.Product, error) {
	product := &models.Product{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Discount:    p.Discount,
		Category:    p.Category,
		BgColor:     p.BgColor,
		TextColor:   p.TextColor,
		PanelColor:  p.PanelColor,
		Rating:      p.Rating,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Image == "" {
		return product, nil
	}

	path := p.Image
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, fmt.Errorf("%s is %s, not an image", p.Image, mtype.String())
	}
	product.Image = data
	product.ImageType = mtype.String()
	return product, nil
}

type Result struct {
	OwnerCreated bool
	Inserted     int
	Skipped      int
}

// Seed inserts every product whose name is not already taken. The owner is
// created only when the file names one and no owner exists yet.
func Seed(ctx context.Context, st store.Store, f *File, baseDir string, log *zap.Logger) (Result, error) {
	var res Result

	if f.Owner != nil {
		created, err := seedOwner(ctx, st, *f.Owner)
		if err != nil {
			return res, err
		}
		res.OwnerCreated = created
		if !created {
			log.Info("owner already present, skipping bootstrap")
		}
	}

	now := time.Now().UTC()
	for i, fixture := range f.Products {
		exists, err := nameTaken(ctx, st, fixture.Name)
		if err != nil {
			return res, err
		}
		if exists {
			res.Skipped++
			log.Debug("product exists", zap.String("name", fixture.Name))
			continue
		}

		// Stagger timestamps so the file order survives newest-first listing.
		product, err := fixture.Product(baseDir, now.Add(-time.Duration(i)*time.Second))
		if err != nil {
			return res, fmt.Errorf("%s: %w", fixture.Name, err)
		}
		if err := st.CreateProduct(ctx, product); err != nil {
			return res, fmt.Errorf("insert %s: %w", fixture.Name, err)
		}
		res.Inserted++
		log.Info("product seeded", zap.String("name", product.Name), zap.String("id", product.ID.Hex()))
	}
	return res, nil
}

func seedOwner(ctx context.Context, st store.Accounts, o OwnerFixture) (bool, error) {
	exists, err := st.OwnerExists(ctx)
	if err != nil || exists {
		return false, err
	}
	if o.Email == "" || len(o.Password) < 6 {
		return false, errors.New("owner needs an email and a password of at least 6 characters")
	}

	hash, err := auth.HashPassword(o.Password)
	if err != nil {
		return false, err
	}
	now := time.Now().UTC()
	owner := &models.Account{
		FullName:     o.FullName,
		Email:        o.Email,
		PasswordHash: hash,
		Role:         models.RoleOwner,
		GSTNo:        o.GSTNo,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := st.CreateAccount(ctx, owner); err != nil {
		if errors.Is(err, store.ErrOwnerExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func nameTaken(ctx context.Context, st store.Products, name string) (bool, error) {
	matches, _, err := st.ListProducts(ctx, store.ProductFilter{Search: name})
	if err != nil {
		return false, err
	}
	for _, p := range matches {
		if strings.EqualFold(p.Name, name) {
			return true, nil
		}
	}
	return false, nil
}
