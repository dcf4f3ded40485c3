package usecase

import (
	"context"
	"time"

	"storehub/internal/domain/entity"
)

// AuthState is where a login stands in the two-factor state machine.
type AuthState string

const (
	// AuthStateConfirmed means a usable session was issued.
	AuthStateConfirmed AuthState = "confirmed"
	// AuthStateChallengePending means a code was sent and must be submitted.
	AuthStateChallengePending AuthState = "challenge_pending"
	// AuthStateSetupRequired means the account must finish two-factor setup first.
	AuthStateSetupRequired AuthState = "setup_required"
)

// --- Input DTOs ---

// LoginInput defines the data required to log in under a guard.
type LoginInput struct {
	Guard       entity.Guard
	Identifier  string
	Password    string
	Remember    bool
	IP          string
	IntendedURL string
}

// VerifyChallengeInput carries a submitted second-factor code.
type VerifyChallengeInput struct {
	Guard          entity.Guard
	ChallengeToken string
	Code           string
}

// --- Output DTOs ---

// LoginOutput tells the caller which state the login reached and the token that goes with it.
type LoginOutput struct {
	State              AuthState
	SessionToken       string // Set for AuthStateConfirmed and AuthStateSetupRequired.
	SessionExpiresAt   time.Time
	ChallengeToken     string // Set for AuthStateChallengePending.
	ChallengeExpiresAt time.Time
	Channel            entity.OtpChannel
	RedirectTo         string
}

// ChallengeOutput is a refreshed pending challenge.
type ChallengeOutput struct {
	ChallengeToken string
	ExpiresAt      time.Time
	Channel        entity.OtpChannel
}

// SessionOutput is a confirmed session.
type SessionOutput struct {
	SessionToken string
	ExpiresAt    time.Time
	RedirectTo   string
}

// TwoFactorSetupOutput is what an authenticator app needs to enroll.
type TwoFactorSetupOutput struct {
	Secret     string
	OTPAuthURL string
	QRCodePNG  []byte
}

// AuthUsecase drives the login and two-factor state machine for every guard.
type AuthUsecase interface {
	Login(ctx context.Context, input LoginInput) (*LoginOutput, error)

	// VerifyChallenge moves a pending challenge to a confirmed session.
	VerifyChallenge(ctx context.Context, input VerifyChallengeInput) (*SessionOutput, error)

	// ResendChallenge issues a new code, superseding the previous one.
	ResendChallenge(ctx context.Context, guard entity.Guard, challengeToken string) (*ChallengeOutput, error)

	// BeginTwoFactorSetup returns enrollment material for the principal's authenticator app.
	BeginTwoFactorSetup(ctx context.Context, principal *entity.Principal) (*TwoFactorSetupOutput, error)

	// ConfirmTwoFactorSetup checks an authenticator code and records the confirmation.
	ConfirmTwoFactorSetup(ctx context.Context, principal *entity.Principal, code string) (*SessionOutput, error)

	// ResolvePrincipal reloads the account behind a session so permission
	// checks see the stored state rather than the token snapshot.
	ResolvePrincipal(ctx context.Context, session *entity.Session) (*entity.Principal, error)
}
