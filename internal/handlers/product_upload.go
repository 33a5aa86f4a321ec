package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"shophub/internal/apperr"
	"shophub/internal/pricing"
	"shophub/internal/store"
)

const maxImageSize = 5 << 20

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// MultipartProductInput records which product fields a form actually carried.
type MultipartProductInput struct {
	Name           string
	NameSet        bool
	Description    string
	DescriptionSet bool
	Price          float64
	PriceSet       bool
	Discount       float64
	DiscountSet    bool
	Category       string
	CategorySet    bool
	BgColor        string
	BgColorSet     bool
	TextColor      string
	TextColorSet   bool
	PanelColor     string
	PanelColorSet  bool
	Image          []byte
	ImageType      string
	ImageSet       bool
}

func parseMultipartProductRequest(c *gin.Context) (MultipartProductInput, error) {
	if !strings.HasPrefix(c.ContentType(), gin.MIMEMultipartPOSTForm) {
		return MultipartProductInput{}, apperr.New(apperr.Validation, "multipart/form-data required")
	}
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		return MultipartProductInput{}, apperr.Wrap(apperr.Validation, "Invalid form data", err)
	}

	input := MultipartProductInput{}

	strField := func(name string, dst *string, set *bool) {
		if value, ok := c.GetPostForm(name); ok {
			*dst = strings.TrimSpace(value)
			*set = true
		}
	}
	strField("name", &input.Name, &input.NameSet)
	strField("description", &input.Description, &input.DescriptionSet)
	strField("category", &input.Category, &input.CategorySet)
	strField("bgColor", &input.BgColor, &input.BgColorSet)
	strField("textColor", &input.TextColor, &input.TextColorSet)
	strField("panelColor", &input.PanelColor, &input.PanelColorSet)

	numField := func(name string, dst *float64, set *bool) error {
		value, ok := c.GetPostForm(name)
		if !ok || strings.TrimSpace(value) == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return apperr.Wrap(apperr.Validation, name+" must be a number", err)
		}
		if !pricing.IsFinite(parsed) {
			return apperr.New(apperr.Validation, name+" must be a number")
		}
		*dst = parsed
		*set = true
		return nil
	}
	if err := numField("price", &input.Price, &input.PriceSet); err != nil {
		return MultipartProductInput{}, err
	}
	if err := numField("discount", &input.Discount, &input.DiscountSet); err != nil {
		return MultipartProductInput{}, err
	}

	file, err := c.FormFile("image")
	if err == nil {
		data, contentType, err := readImage(file)
		if err != nil {
			return MultipartProductInput{}, err
		}
		input.Image = data
		input.ImageType = contentType
		input.ImageSet = true
	} else if !errors.Is(err, http.ErrMissingFile) && !strings.Contains(err.Error(), "no such file") {
		return MultipartProductInput{}, apperr.Wrap(apperr.Validation, "Invalid image upload", err)
	}

	return input, nil
}

// readImage loads an upload into memory and checks its sniffed content type.
func readImage(file *multipart.FileHeader) ([]byte, string, error) {
	if file.Size > maxImageSize {
		return nil, "", apperr.New(apperr.Validation, "image file too large (max 5MB)")
	}

	in, err := file.Open()
	if err != nil {
		return nil, "", apperr.Wrap(apperr.Internal, "open upload", err)
	}
	defer in.Close()

	data, err := io.ReadAll(io.LimitReader(in, maxImageSize+1))
	if err != nil {
		return nil, "", apperr.Wrap(apperr.Internal, "read upload", err)
	}
	if len(data) > maxImageSize {
		return nil, "", apperr.New(apperr.Validation, "image file too large (max 5MB)")
	}
	if len(data) == 0 {
		return nil, "", apperr.New(apperr.Validation, "image file is empty")
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return nil, "", apperr.New(apperr.Validation, fmt.Sprintf("unsupported image type: %s", mtype.String()))
	}
	return data, mtype.String(), nil
}

// productFields is validated as a whole on create.
type productFields struct {
	Name       string  `json:"name" validate:"required"`
	Price      float64 `json:"price" validate:"gt=0"`
	Discount   float64 `json:"discount" validate:"gte=0,lte=100"`
	Category   string  `json:"category" validate:"required"`
	BgColor    string  `json:"bgColor" validate:"required,hexcolor"`
	TextColor  string  `json:"textColor" validate:"required,hexcolor"`
	PanelColor string  `json:"panelColor" validate:"required,hexcolor"`
}

func (in MultipartProductInput) validateCreate() error {
	fields := productFields{
		Name:       in.Name,
		Price:      in.Price,
		Discount:   in.Discount,
		Category:   in.Category,
		BgColor:    in.BgColor,
		TextColor:  in.TextColor,
		PanelColor: in.PanelColor,
	}
	if err := validate.Struct(fields); err != nil {
		return validationError(err)
	}
	if !in.ImageSet {
		return apperr.New(apperr.Validation, "image is required")
	}
	return nil
}

// toUpdate validates only the fields that were sent.
func (in MultipartProductInput) toUpdate() (store.ProductUpdate, error) {
	var update store.ProductUpdate

	check := func(field string, value any, tag string) error {
		if err := validate.Var(value, tag); err != nil {
			return apperr.Wrap(apperr.Validation, field+" is invalid", err)
		}
		return nil
	}

	if in.NameSet {
		if err := check("name", in.Name, "required"); err != nil {
			return update, err
		}
		update.Name = &in.Name
	}
	if in.DescriptionSet {
		update.Description = &in.Description
	}
	if in.PriceSet {
		if err := check("price", in.Price, "gt=0"); err != nil {
			return update, err
		}
		update.Price = &in.Price
	}
	if in.DiscountSet {
		if err := check("discount", in.Discount, "gte=0,lte=100"); err != nil {
			return update, err
		}
		update.Discount = &in.Discount
	}
	if in.CategorySet {
		if err := check("category", in.Category, "required"); err != nil {
			return update, err
		}
		update.Category = &in.Category
	}
	for _, color := range []struct {
		field string
		value string
		set   bool
		dst   **string
	}{
		{"bgColor", in.BgColor, in.BgColorSet, &update.BgColor},
		{"textColor", in.TextColor, in.TextColorSet, &update.TextColor},
		{"panelColor", in.PanelColor, in.PanelColorSet, &update.PanelColor},
	} {
		if !color.set {
			continue
		}
		if err := check(color.field, color.value, "required,hexcolor"); err != nil {
			return update, err
		}
		value := color.value
		*color.dst = &value
	}
	if in.ImageSet {
		update.Image = in.Image
		update.ImageType = in.ImageType
	}

	if update.IsEmpty() {
		return update, apperr.New(apperr.Validation, "no fields to update")
	}
	return update, nil
}
