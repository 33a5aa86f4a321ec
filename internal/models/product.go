package models

import (
	"encoding/base64"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shophub/internal/pricing"
)

// DefaultRating applies when a product is stored without one.
const DefaultRating = 4.5

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Price       float64            `bson:"price" json:"price"`
	Discount    float64            `bson:"discount" json:"discount"`
	FinalPrice  float64            `bson:"-" json:"finalPrice"`
	Category    string             `bson:"category" json:"category"`
	BgColor     string             `bson:"bgColor" json:"bgColor"`
	TextColor   string             `bson:"textColor" json:"textColor"`
	PanelColor  string             `bson:"panelColor" json:"panelColor"`
	Image       []byte             `bson:"image" json:"-"`
	ImageType   string             `bson:"imageType,omitempty" json:"-"`
	ImageURI    string             `bson:"-" json:"image,omitempty"`
	Rating      float64            `bson:"rate" json:"rating"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ImageDataURI embeds the stored image as a base64 data URI.
func (p *Product) ImageDataURI() string {
	if len(p.Image) == 0 {
		return ""
	}
	contentType := p.ImageType
	if contentType == "" {
		contentType = mimetype.Detect(p.Image).String()
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(p.Image)
}

// Decorate fills the derived, non-persisted fields after a product is loaded.
func (p *Product) Decorate() {
	if p.Rating == 0 {
		p.Rating = DefaultRating
	}
	p.FinalPrice = pricing.EffectivePrice(p.Price, p.Discount).Round(2).InexactFloat64()
	p.ImageURI = p.ImageDataURI()
}

// LineItem turns a cart line into a pricing input using the product's current price.
func (p *Product) LineItem(quantity int) pricing.LineItem {
	return pricing.LineItem{
		ProductID:       p.ID.Hex(),
		Quantity:        quantity,
		UnitPrice:       pricing.FromFloat(p.Price),
		DiscountPercent: pricing.FromFloat(p.Discount),
	}
}
