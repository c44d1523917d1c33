// internal/app/features/listings/handler.go
package listings

import (
	uierrors "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/features/errors"
	authoritystore "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/store/authorities"
	listingstore "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/store/listings"
	userstore "github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/store/users"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/auth"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/blobstore"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// DefaultMaxUploadBytes caps a complaint form including its photo.
const DefaultMaxUploadBytes = 10 << 20

// Handler serves the complaint pages and the endorsement and status actions.
type Handler struct {
	Listings    *listingstore.Store
	Users       *userstore.Store
	Authorities *authoritystore.Store
	Blobs       blobstore.Store
	SessionMgr  *auth.SessionManager
	ErrLog      *uierrors.ErrorLogger
	Log         *zap.Logger

	MaxUploadBytes int64
}

func NewHandler(db *mongo.Database, blobs blobstore.Store, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, maxUploadBytes int64, logger *zap.Logger) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{
		Listings:       listingstore.New(db),
		Users:          userstore.New(db),
		Authorities:    authoritystore.New(db),
		Blobs:          blobs,
		SessionMgr:     sessionMgr,
		ErrLog:         errLog,
		Log:            logger,
		MaxUploadBytes: maxUploadBytes,
	}
}
