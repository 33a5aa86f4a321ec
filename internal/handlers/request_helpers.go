package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"shophub/internal/apperr"
	"shophub/internal/auth"
	"shophub/internal/flash"
	"shophub/internal/middleware"
	"shophub/internal/store"
)

const opTimeout = 5 * time.Second

// Env carries the dependencies every handler constructor closes over.
type Env struct {
	Store       store.Store
	Tokens      *auth.Issuer
	Cookies     auth.CookieConfig
	PlatformFee decimal.Decimal
	Log         *zap.Logger
}

func (e *Env) logger(area string) *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log.Named(area)
}

func opContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), opTimeout)
}

func logAppError(log *zap.Logger, route string, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.Internal {
		log.Error("request failed", zap.String("route", route), zap.Error(err))
		return
	}
	log.Info("request rejected",
		zap.String("route", route),
		zap.String("kind", kind.String()),
		zap.String("message", apperr.PublicMessage(err)),
	)
}

// respondError writes the JSON failure envelope for err.
func respondError(c *gin.Context, log *zap.Logger, route string, err error) {
	logAppError(log, route, err)
	c.AbortWithStatusJSON(apperr.StatusOf(err), gin.H{
		"success": false,
		"message": apperr.PublicMessage(err),
	})
}

// redirectWithError queues err as a flash notice and redirects the browser.
func redirectWithError(c *gin.Context, log *zap.Logger, route, target string, err error) {
	logAppError(log, route, err)
	flash.AddError(c, apperr.PublicMessage(err))
	c.Redirect(http.StatusFound, target)
	c.Abort()
}

func redirectWithSuccess(c *gin.Context, target, message string) {
	flash.AddSuccess(c, message)
	c.Redirect(http.StatusFound, target)
}

// fail picks the presentation mode from the caller.
func fail(c *gin.Context, log *zap.Logger, route, target string, err error) {
	if middleware.WantsJSON(c) {
		respondError(c, log, route, err)
		return
	}
	redirectWithError(c, log, route, target, err)
}

func parseProductID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.New(apperr.NotFound, "Product not found")
	}
	return id, nil
}

// storeError maps store sentinels onto the error taxonomy.
func storeError(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return apperr.Wrap(apperr.NotFound, notFound, err)
	case errors.Is(err, store.ErrDuplicateEmail):
		return apperr.Wrap(apperr.Conflict, "User already exists with this email. Please Login", err)
	case errors.Is(err, store.ErrOwnerExists):
		return apperr.Wrap(apperr.Forbidden, ownerExistsMessage, err)
	case errors.Is(err, store.ErrAlreadyInCart):
		return apperr.Wrap(apperr.Conflict, "Product already in cart", err)
	default:
		return apperr.Wrap(apperr.Internal, "store", err)
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

func Health(s pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := s.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
