package auth

import (
	"time"

	"storehub/config"
	"storehub/internal/domain/entity"
	"storehub/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const tokenIssuer = "storehub"

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
// Session and challenge tokens are signed with different secrets so one can never stand in for the other.
type jwtService struct {
	sessionSecret      []byte
	challengeSecret    []byte
	sessionTTL         time.Duration
	rememberSessionTTL time.Duration
	challengeTTL       time.Duration
	now                func() time.Time
}

// NewJWTService is the constructor for jwtService.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Session == "" || cfg.SecretKey.Challenge == "" {
		return nil, errors.New("jwt secrets must be provided")
	}
	if cfg.SecretKey.Session == cfg.SecretKey.Challenge {
		return nil, errors.New("session and challenge secrets must differ")
	}
	cfg.ApplyDefaults()

	return &jwtService{
		sessionSecret:      []byte(cfg.SecretKey.Session),
		challengeSecret:    []byte(cfg.SecretKey.Challenge),
		sessionTTL:         cfg.Auth.SessionTTL,
		rememberSessionTTL: cfg.Auth.RememberSessionTTL,
		challengeTTL:       cfg.Auth.TwoFactor.ChallengeTTL,
		now:                time.Now,
	}, nil
}

func (s *jwtService) SessionTTL(remember bool) time.Duration {
	if remember {
		return s.rememberSessionTTL
	}

	return s.sessionTTL
}

// IssueSession signs a session token for the principal.
func (s *jwtService) IssueSession(session entity.Session) (string, error) {
	now := s.now()
	expiresAt := session.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = now.Add(s.sessionTTL)
	}

	claims := &service.Claims{
		AccountID:          session.Principal.AccountID,
		Guard:              session.Principal.Guard.String(),
		StoreID:            session.Principal.StoreID,
		Permissions:        session.Principal.Permissions.Strings(),
		TwoFactorConfirmed: session.TwoFactorConfirmed,
		SetupPending:       session.SetupPending,
		Type:               service.TokenTypeSession,
		RegisteredClaims:   s.registered(session.Principal.AccountID, now, expiresAt),
	}

	return s.sign(claims, s.sessionSecret)
}

// IssueChallenge signs a short-lived token carrying the pending challenge.
func (s *jwtService) IssueChallenge(challenge entity.PendingChallenge) (string, time.Time, error) {
	now := s.now()
	if challenge.IssuedAt.IsZero() {
		challenge.IssuedAt = now
	}
	expiresAt := challenge.IssuedAt.Add(s.challengeTTL)

	claims := &service.Claims{
		AccountID:        challenge.AccountID,
		Guard:            challenge.Guard.String(),
		Remember:         challenge.Remember,
		Channel:          challenge.Channel.String(),
		IntendedURL:      challenge.IntendedURL,
		Type:             service.TokenTypeChallenge,
		RegisteredClaims: s.registered(challenge.AccountID, challenge.IssuedAt, expiresAt),
	}

	token, err := s.sign(claims, s.challengeSecret)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

// ParseSession validates a session token and returns its content.
func (s *jwtService) ParseSession(tokenString string) (*entity.Session, error) {
	claims, err := s.parse(tokenString, s.sessionSecret, service.TokenTypeSession)
	if err != nil {
		return nil, err
	}

	guard := entity.Guard(claims.Guard)
	if !guard.IsValid() {
		return nil, errors.New("token carries an unknown guard")
	}

	permissions, err := entity.ParsePermissionSet(claims.Permissions)
	if err != nil {
		return nil, errors.Wrap(err, "token carries invalid permissions")
	}

	session := &entity.Session{
		Principal: entity.Principal{
			Guard:       guard,
			AccountID:   claims.AccountID,
			StoreID:     claims.StoreID,
			Permissions: permissions,
		},
		TwoFactorConfirmed: claims.TwoFactorConfirmed,
		SetupPending:       claims.SetupPending,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}

	return session, nil
}

// ParseChallenge validates a challenge token and returns the pending challenge.
func (s *jwtService) ParseChallenge(tokenString string) (*entity.PendingChallenge, error) {
	claims, err := s.parse(tokenString, s.challengeSecret, service.TokenTypeChallenge)
	if err != nil {
		return nil, err
	}

	guard := entity.Guard(claims.Guard)
	if !guard.IsValid() {
		return nil, errors.New("token carries an unknown guard")
	}

	challenge := &entity.PendingChallenge{
		Guard:       guard,
		AccountID:   claims.AccountID,
		Remember:    claims.Remember,
		Channel:     entity.OtpChannel(claims.Channel),
		IntendedURL: claims.IntendedURL,
	}
	if claims.IssuedAt != nil {
		challenge.IssuedAt = claims.IssuedAt.Time
	}

	return challenge, nil
}

func (s *jwtService) registered(subject uuid.UUID, issuedAt, expiresAt time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   subject.String(),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
}

func (s *jwtService) sign(claims *service.Claims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}

func (s *jwtService) parse(tokenString string, secret []byte, tokenType string) (*service.Claims, error) {
	claims := &service.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse token")
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Type != tokenType {
		return nil, errors.Errorf("unexpected token type %q", claims.Type)
	}
	if claims.AccountID == uuid.Nil {
		return nil, errors.New("token has no subject")
	}

	return claims, nil
}
