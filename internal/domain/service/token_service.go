package service

import (
	"time"

	"storehub/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the "typ" claim.
const (
	TokenTypeSession   = "session"
	TokenTypeChallenge = "challenge"
)

// Claims defines the custom claims for the JWT tokens.
type Claims struct {
	AccountID          uuid.UUID `json:"aid"`
	Guard              string    `json:"grd"`
	StoreID            uuid.UUID `json:"sid,omitempty"`
	Permissions        []string  `json:"perms,omitempty"`
	TwoFactorConfirmed bool      `json:"tfc,omitempty"`
	SetupPending       bool      `json:"tfs,omitempty"`
	Remember           bool      `json:"rem,omitempty"`
	Channel            string    `json:"chn,omitempty"`
	IntendedURL        string    `json:"url,omitempty"`
	Type               string    `json:"typ"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for generating and validating JWTs.
type TokenService interface {
	// IssueSession signs a session token for the principal.
	IssueSession(session entity.Session) (string, error)

	// IssueChallenge signs a short-lived token carrying the pending challenge.
	IssueChallenge(challenge entity.PendingChallenge) (string, time.Time, error)

	// ParseSession validates a session token and returns its content.
	ParseSession(tokenString string) (*entity.Session, error)

	// ParseChallenge validates a challenge token and returns the pending challenge.
	ParseChallenge(tokenString string) (*entity.PendingChallenge, error)

	// SessionTTL returns the lifetime of a session token.
	SessionTTL(remember bool) time.Duration
}
