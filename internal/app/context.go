package app

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/udinder/internal/auth"
	"github.com/oggyb/udinder/internal/events"
)

// AppContext holds shared dependencies (DB, events, token issuer, logger, clock).
type AppContext struct {
	DB         *gorm.DB
	Events     events.Publisher
	Tokens     *auth.TokenIssuer
	Logger     *slog.Logger
	BcryptCost int
	// Now is the clock used for age derivation.
	Now func() time.Time
}

// New creates a new AppContext. A nil publisher becomes events.Nop.
func New(db *gorm.DB, pub events.Publisher, tokens *auth.TokenIssuer, logger *slog.Logger) *AppContext {
	if pub == nil {
		pub = events.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AppContext{
		DB:         db,
		Events:     pub,
		Tokens:     tokens,
		Logger:     logger,
		BcryptCost: 10,
		Now:        time.Now,
	}
}
