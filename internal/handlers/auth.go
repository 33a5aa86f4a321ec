package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"shophub/internal/apperr"
	"shophub/internal/auth"
	"shophub/internal/middleware"
	"shophub/internal/models"
	"shophub/internal/store"
)

const (
	ownerExistsMessage  = "Owner already exists. You do not have permission to create another owner"
	invalidLoginMessage = "Invalid email or password"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

type normalizer interface {
	normalize()
}

type RegisterRequest struct {
	FullName  string `json:"fullName" form:"fullName" validate:"required,min=3"`
	Email     string `json:"email" form:"email" validate:"required,email"`
	Password  string `json:"password" form:"password" validate:"required,min=6"`
	Location  string `json:"location" form:"location"`
	ContactNo string `json:"contactNo" form:"contactNo"`
}

func (r *RegisterRequest) normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.TrimSpace(r.Email)
	r.Location = strings.TrimSpace(r.Location)
	r.ContactNo = strings.TrimSpace(r.ContactNo)
}

type OwnerRequest struct {
	FullName string `json:"fullName" form:"fullName" validate:"required,min=3"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
	GSTNo    string `json:"gstNo" form:"gstNo"`
}

func (r *OwnerRequest) normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.TrimSpace(r.Email)
	r.GSTNo = strings.TrimSpace(r.GSTNo)
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

func (r *LoginRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

// bindRequest decodes a JSON or form body, trims it and runs the validate tags.
func bindRequest(c *gin.Context, req normalizer) error {
	if err := c.ShouldBind(req); err != nil {
		return apperr.Wrap(apperr.Validation, "Invalid request body", err)
	}
	req.normalize()
	if err := validate.Struct(req); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperr.Wrap(apperr.Validation, "Invalid request body", err)
	}

	details := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		field := lowerCamel(fieldError.Field())
		switch fieldError.Tag() {
		case "required":
			details = append(details, fmt.Sprintf("%s is required", field))
		case "email":
			details = append(details, fmt.Sprintf("%s must be a valid email", field))
		case "min":
			details = append(details, fmt.Sprintf("%s must be at least %s characters", field, fieldError.Param()))
		case "hexcolor":
			details = append(details, fmt.Sprintf("%s must be a hex color", field))
		case "gt", "gte", "lte":
			details = append(details, fmt.Sprintf("%s is out of range", field))
		default:
			details = append(details, fmt.Sprintf("%s is invalid", field))
		}
	}
	return apperr.Wrap(apperr.Validation, strings.Join(details, ", "), err)
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// startSession issues a token for the account and stores it in the session cookie.
func startSession(c *gin.Context, env *Env, account *models.Account) error {
	token, err := env.Tokens.Issue(account.ID, account.Email, account.Role)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "issue token", err)
	}
	auth.ClearSessionCookie(c, env.Cookies)
	auth.SetSessionCookie(c, env.Cookies, token)
	return nil
}

func newAccount(fullName, email, password, role string) (*models.Account, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "hash password", err)
	}
	now := time.Now().UTC()
	return &models.Account{
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Register handles POST /users/register from the landing form or a fetch call.
func Register(env *Env) gin.HandlerFunc {
	log := env.logger("auth")

	return func(c *gin.Context) {
		const route = "POST /users/register"

		var req RegisterRequest
		if err := bindRequest(c, &req); err != nil {
			fail(c, log, route, "/", err)
			return
		}

		ctx, cancel := opContext(c)
		defer cancel()

		if _, err := env.Store.FindAccountByEmail(ctx, req.Email); err == nil {
			fail(c, log, route, "/", storeError(store.ErrDuplicateEmail, ""))
			return
		} else if !errors.Is(err, store.ErrNotFound) {
			fail(c, log, route, "/", storeError(err, ""))
			return
		}

		account, err := newAccount(req.FullName, req.Email, req.Password, models.RoleUser)
		if err != nil {
			fail(c, log, route, "/", err)
			return
		}
		account.Location = req.Location
		account.ContactNo = req.ContactNo

		if err := env.Store.CreateAccount(ctx, account); err != nil {
			fail(c, log, route, "/", storeError(err, ""))
			return
		}
		if err := startSession(c, env, account); err != nil {
			fail(c, log, route, "/", err)
			return
		}

		log.Info("account registered", zap.String("accountId", account.ID.Hex()))

		const message = "Registration successful! Welcome to ShopHub!"
		if middleware.WantsJSON(c) {
			c.JSON(http.StatusCreated, gin.H{"success": true, "message": message, "user": account.Summary()})
			return
		}
		redirectWithSuccess(c, "/shop", message)
	}
}

// CreateOwner handles POST /owners/create. Only the first call can succeed.
func CreateOwner(env *Env) gin.HandlerFunc {
	log := env.logger("auth")

	return func(c *gin.Context) {
		const route = "POST /owners/create"

		var req OwnerRequest
		if err := bindRequest(c, &req); err != nil {
			fail(c, log, route, "/", err)
			return
		}

		ctx, cancel := opContext(c)
		defer cancel()

		exists, err := env.Store.OwnerExists(ctx)
		if err != nil {
			fail(c, log, route, "/", storeError(err, ""))
			return
		}
		if exists {
			fail(c, log, route, "/", apperr.New(apperr.Forbidden, ownerExistsMessage))
			return
		}

		owner, err := newAccount(req.FullName, req.Email, req.Password, models.RoleOwner)
		if err != nil {
			fail(c, log, route, "/", err)
			return
		}
		owner.GSTNo = req.GSTNo

		// A racing create that passed the check above is rejected by the owner index.
		if err := env.Store.CreateAccount(ctx, owner); err != nil {
			fail(c, log, route, "/", storeError(err, ""))
			return
		}
		if err := startSession(c, env, owner); err != nil {
			fail(c, log, route, "/", err)
			return
		}

		log.Info("owner created", zap.String("accountId", owner.ID.Hex()))

		const message = "Owner created successfully"
		if middleware.WantsJSON(c) {
			c.JSON(http.StatusCreated, gin.H{"success": true, "message": message, "owner": owner.Summary()})
			return
		}
		redirectWithSuccess(c, "/owners/admin", message)
	}
}

// Login answers unknown email and wrong password identically.
func Login(env *Env) gin.HandlerFunc {
	log := env.logger("auth")

	return func(c *gin.Context) {
		const route = "POST /users/login"

		var req LoginRequest
		if err := bindRequest(c, &req); err != nil {
			fail(c, log, route, "/", err)
			return
		}

		ctx, cancel := opContext(c)
		defer cancel()

		account, err := env.Store.FindAccountByEmail(ctx, req.Email)
		if errors.Is(err, store.ErrNotFound) {
			fail(c, log, route, "/", apperr.New(apperr.Unauthorized, invalidLoginMessage))
			return
		}
		if err != nil {
			fail(c, log, route, "/", storeError(err, ""))
			return
		}
		if !auth.CheckPassword(account.PasswordHash, req.Password) {
			fail(c, log, route, "/", apperr.New(apperr.Unauthorized, invalidLoginMessage))
			return
		}

		if err := startSession(c, env, account); err != nil {
			fail(c, log, route, "/", err)
			return
		}

		target := "/shop"
		if account.IsOwner() {
			target = "/owners/admin"
		}
		log.Info("login succeeded", zap.String("accountId", account.ID.Hex()), zap.String("role", account.Role))

		const message = "Login successful! Welcome back!"
		if middleware.WantsJSON(c) {
			c.JSON(http.StatusOK, gin.H{
				"success":  true,
				"message":  message,
				"user":     account.Summary(),
				"redirect": target,
			})
			return
		}
		redirectWithSuccess(c, target, message)
	}
}

func Logout(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth.ClearSessionCookie(c, env.Cookies)
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logout successful"})
	}
}
