package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	deliverycontext "storehub/internal/delivery/context"
	"storehub/internal/domain/entity"
	domainerrors "storehub/internal/domain/errors"
	"storehub/internal/domain/repository"
	"storehub/internal/domain/service"
	"storehub/internal/infra/audit"
	"storehub/internal/infra/metrics"
	"storehub/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	loginResultAuthenticated = "authenticated"
	loginResultChallenged    = "challenged"
	loginResultSetup         = "setup_required"
	loginResultRejected      = "rejected"
	loginResultThrottled     = "throttled"

	verifyResultConfirmed = "confirmed"
	verifyResultInvalid   = "invalid"
)

// authService implements the AuthUsecase interface.
type authService struct {
	accountRepo  repository.AccountRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	totp         service.TOTPService
	qrCode       service.QRCodeService
	limiter      service.RateLimiter
	providers    usecase.TwoFactorProviders
	audit        *audit.Logger
	logger       *slog.Logger
	now          func() time.Time
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	AccountRepo  repository.AccountRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	TOTP         service.TOTPService
	QRCode       service.QRCodeService
	Limiter      service.RateLimiter
	Providers    usecase.TwoFactorProviders
	Audit        *audit.Logger
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		accountRepo:  params.AccountRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		totp:         params.TOTP,
		qrCode:       params.QRCode,
		limiter:      params.Limiter,
		providers:    params.Providers,
		audit:        params.Audit,
		logger:       params.Logger,
		now:          time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Login validates credentials and advances the account to the next state:
// confirmed, setup required, or challenge pending.
func (srv *authService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginOutput, error) {
	if !input.Guard.IsValid() {
		return nil, domainerrors.ErrUnknownGuard
	}

	identifier := strings.ToLower(strings.TrimSpace(input.Identifier))
	throttleKey := loginThrottleKey(input.Guard, identifier, input.IP)

	if !srv.allow(ctx, throttleKey) {
		srv.audit.LogLogin(ctx, input.Guard, identifier, loginResultThrottled)
		metrics.ObserveLogin(input.Guard.String(), loginResultThrottled)

		return nil, domainerrors.ErrTooManyAttempts
	}

	account, err := srv.accountRepo.FindByEmail(ctx, input.Guard, identifier)
	if err != nil && !errors.Is(err, repository.ErrAccountNotFound) {
		srv.log(ctx).Error("Failed to find account", slog.String("guard", input.Guard.String()), slog.Any("error", err))

		return nil, domainerrors.ErrInternalError.WrapMessage("failed to find account")
	}

	if account == nil || !srv.hasher.Check(input.Password, account.PasswordHash) {
		srv.audit.LogLogin(ctx, input.Guard, identifier, loginResultRejected)
		metrics.ObserveLogin(input.Guard.String(), loginResultRejected)

		return nil, domainerrors.ErrInvalidCredentials
	}

	srv.reset(ctx, throttleKey)
	redirectTo := safeRedirect(input.IntendedURL, input.Guard)

	switch {
	case !account.HasTwoFactor():
		out, err := srv.issueSession(account, input.Remember, false, false, redirectTo)
		if err != nil {
			return nil, err
		}
		srv.audit.LogLogin(ctx, input.Guard, identifier, loginResultAuthenticated)
		metrics.ObserveLogin(input.Guard.String(), loginResultAuthenticated)

		return &usecase.LoginOutput{
			State:            usecase.AuthStateConfirmed,
			SessionToken:     out.SessionToken,
			SessionExpiresAt: out.ExpiresAt,
			RedirectTo:       out.RedirectTo,
		}, nil

	case !account.TwoFactorConfirmed():
		out, err := srv.issueSession(account, input.Remember, false, true, setupPath(input.Guard))
		if err != nil {
			return nil, err
		}
		srv.audit.LogLogin(ctx, input.Guard, identifier, loginResultSetup)
		metrics.ObserveLogin(input.Guard.String(), loginResultSetup)

		return &usecase.LoginOutput{
			State:            usecase.AuthStateSetupRequired,
			SessionToken:     out.SessionToken,
			SessionExpiresAt: out.ExpiresAt,
			RedirectTo:       out.RedirectTo,
		}, nil

	default:
		challenge := entity.PendingChallenge{
			Guard:       input.Guard,
			AccountID:   account.ID,
			Remember:    input.Remember,
			Channel:     account.ChallengeChannel(),
			IntendedURL: redirectTo,
			IssuedAt:    srv.now(),
		}

		out, err := srv.sendChallenge(ctx, account, challenge)
		if err != nil {
			return nil, err
		}
		srv.audit.LogLogin(ctx, input.Guard, identifier, loginResultChallenged)
		metrics.ObserveLogin(input.Guard.String(), loginResultChallenged)

		return &usecase.LoginOutput{
			State:              usecase.AuthStateChallengePending,
			ChallengeToken:     out.ChallengeToken,
			ChallengeExpiresAt: out.ExpiresAt,
			Channel:            out.Channel,
		}, nil
	}
}

// VerifyChallenge finalizes the login of a pending challenge.
func (srv *authService) VerifyChallenge(ctx context.Context, input usecase.VerifyChallengeInput) (*usecase.SessionOutput, error) {
	challenge, account, err := srv.loadChallenge(ctx, input.Guard, input.ChallengeToken)
	if err != nil {
		return nil, err
	}

	throttleKey := twoFactorThrottleKey(account)
	if !srv.allow(ctx, throttleKey) {
		srv.audit.LogTwoFactor(ctx, account.Guard, account.ID.String(), "two_factor_verify", loginResultThrottled)

		return nil, domainerrors.ErrTooManyAttempts
	}

	provider, ok := srv.providers.Get(challenge.Channel)
	if !ok {
		srv.log(ctx).Error("No provider for challenge channel", slog.String("channel", challenge.Channel.String()))

		return nil, domainerrors.ErrChallengeInvalid
	}

	if !provider.Verify(ctx, account, input.Code) {
		srv.audit.LogTwoFactor(ctx, account.Guard, account.ID.String(), "two_factor_verify", verifyResultInvalid)
		metrics.ObserveTwoFactor(challenge.Channel.String(), verifyResultInvalid)

		return nil, domainerrors.ErrInvalidTwoFactorCode
	}

	srv.reset(ctx, throttleKey)
	srv.audit.LogTwoFactor(ctx, account.Guard, account.ID.String(), "two_factor_verify", verifyResultConfirmed)
	metrics.ObserveTwoFactor(challenge.Channel.String(), verifyResultConfirmed)

	return srv.issueSession(account, challenge.Remember, true, false, safeRedirect(challenge.IntendedURL, challenge.Guard))
}

// ResendChallenge sends a new code; the previous one stops verifying.
func (srv *authService) ResendChallenge(ctx context.Context, guard entity.Guard, challengeToken string) (*usecase.ChallengeOutput, error) {
	challenge, account, err := srv.loadChallenge(ctx, guard, challengeToken)
	if err != nil {
		return nil, err
	}

	if !srv.allow(ctx, resendThrottleKey(account)) {
		return nil, domainerrors.ErrTooManyAttempts
	}

	challenge.IssuedAt = srv.now()

	return srv.sendChallenge(ctx, account, *challenge)
}

// BeginTwoFactorSetup creates or re-displays the authenticator secret of an unconfirmed account.
func (srv *authService) BeginTwoFactorSetup(ctx context.Context, principal *entity.Principal) (*usecase.TwoFactorSetupOutput, error) {
	account, err := srv.findPrincipalAccount(ctx, principal)
	if err != nil {
		return nil, err
	}

	if account.TwoFactorConfirmed() {
		return nil, domainerrors.ErrTwoFactorAlreadyConfirmed
	}

	secret := account.TwoFactorSecret
	var otpauthURL string
	if secret == "" {
		secret, otpauthURL, err = srv.totp.GenerateSecret(account.Email)
		if err != nil {
			srv.log(ctx).Error("Failed to generate totp secret", slog.Any("accountID", account.ID), slog.Any("error", err))

			return nil, domainerrors.ErrInternalError.WrapMessage("failed to generate two-factor secret")
		}

		channel := account.TwoFactorChannel
		if !channel.IsValid() {
			channel = entity.OtpChannelTOTP
		}
		if err := srv.accountRepo.UpdateTwoFactor(ctx, account.ID, secret, channel, nil); err != nil {
			srv.log(ctx).Error("Failed to store totp secret", slog.Any("accountID", account.ID), slog.Any("error", err))

			return nil, domainerrors.ErrInternalError.WrapMessage("failed to store two-factor secret")
		}
	} else {
		otpauthURL = srv.totp.KeyURL(account.Email, secret)
	}

	png, err := srv.qrCode.GenerateEnrollmentQR(otpauthURL)
	if err != nil {
		srv.log(ctx).Error("Failed to render enrollment qr code", slog.Any("error", err))

		return nil, domainerrors.ErrInternalError.WrapMessage("failed to render qr code")
	}

	srv.audit.LogTwoFactor(ctx, account.Guard, account.ID.String(), "two_factor_setup", "started")

	return &usecase.TwoFactorSetupOutput{
		Secret:     secret,
		OTPAuthURL: otpauthURL,
		QRCodePNG:  png,
	}, nil
}

// ConfirmTwoFactorSetup completes setup and upgrades the session to a confirmed one.
func (srv *authService) ConfirmTwoFactorSetup(ctx context.Context, principal *entity.Principal, code string) (*usecase.SessionOutput, error) {
	account, err := srv.findPrincipalAccount(ctx, principal)
	if err != nil {
		return nil, err
	}

	if account.TwoFactorConfirmed() {
		return nil, domainerrors.ErrTwoFactorAlreadyConfirmed
	}
	if !account.HasTwoFactor() {
		return nil, domainerrors.ErrTwoFactorSetupRequired.WrapMessage("two-factor setup was not started")
	}

	throttleKey := twoFactorThrottleKey(account)
	if !srv.allow(ctx, throttleKey) {
		return nil, domainerrors.ErrTooManyAttempts
	}

	if !srv.totp.Validate(code, account.TwoFactorSecret) {
		srv.audit.LogTwoFactor(ctx, account.Guard, account.ID.String(), "two_factor_setup", verifyResultInvalid)

		return nil, domainerrors.ErrInvalidTwoFactorCode
	}

	confirmedAt := srv.now()
	if err := srv.accountRepo.UpdateTwoFactor(ctx, account.ID, account.TwoFactorSecret, account.ChallengeChannel(), &confirmedAt); err != nil {
		srv.log(ctx).Error("Failed to confirm two-factor setup", slog.Any("accountID", account.ID), slog.Any("error", err))

		return nil, domainerrors.ErrInternalError.WrapMessage("failed to confirm two-factor setup")
	}
	account.TwoFactorConfirmedAt = &confirmedAt

	srv.reset(ctx, throttleKey)
	srv.audit.LogTwoFactor(ctx, account.Guard, account.ID.String(), "two_factor_setup", verifyResultConfirmed)

	return srv.issueSession(account, false, true, false, homePath(account.Guard))
}

func (srv *authService) ResolvePrincipal(ctx context.Context, session *entity.Session) (*entity.Principal, error) {
	account, err := srv.findPrincipalAccount(ctx, &session.Principal)
	if err != nil {
		return nil, err
	}

	principal := entity.PrincipalFromAccount(account)

	return &principal, nil
}

func (srv *authService) loadChallenge(ctx context.Context, guard entity.Guard, token string) (*entity.PendingChallenge, *entity.Account, error) {
	challenge, err := srv.tokenService.ParseChallenge(token)
	if err != nil {
		srv.log(ctx).Debug("Rejected challenge token", slog.Any("error", err))

		return nil, nil, domainerrors.ErrChallengeInvalid
	}

	if challenge.Guard != guard {
		return nil, nil, domainerrors.ErrChallengeInvalid
	}

	account, err := srv.accountRepo.FindByID(ctx, challenge.Guard, challenge.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, nil, domainerrors.ErrChallengeInvalid
		}
		srv.log(ctx).Error("Failed to load challenged account", slog.Any("error", err))

		return nil, nil, domainerrors.ErrInternalError.WrapMessage("failed to load account")
	}

	if !account.HasTwoFactor() {
		return nil, nil, domainerrors.ErrChallengeInvalid
	}

	return challenge, account, nil
}

func (srv *authService) sendChallenge(ctx context.Context, account *entity.Account, challenge entity.PendingChallenge) (*usecase.ChallengeOutput, error) {
	provider, ok := srv.providers.Get(challenge.Channel)
	if !ok || !provider.GenerateAndSend(ctx, account) {
		return nil, domainerrors.ErrTwoFactorChannelUnavailable
	}

	token, expiresAt, err := srv.tokenService.IssueChallenge(challenge)
	if err != nil {
		srv.log(ctx).Error("Failed to issue challenge token", slog.Any("error", err))

		return nil, domainerrors.ErrInternalError.WrapMessage("failed to issue challenge")
	}

	return &usecase.ChallengeOutput{
		ChallengeToken: token,
		ExpiresAt:      expiresAt,
		Channel:        challenge.Channel,
	}, nil
}

func (srv *authService) issueSession(account *entity.Account, remember, confirmed, setupPending bool, redirectTo string) (*usecase.SessionOutput, error) {
	session := entity.Session{
		Principal:          entity.PrincipalFromAccount(account),
		TwoFactorConfirmed: confirmed,
		SetupPending:       setupPending,
		ExpiresAt:          srv.now().Add(srv.tokenService.SessionTTL(remember)),
	}

	token, err := srv.tokenService.IssueSession(session)
	if err != nil {
		return nil, domainerrors.ErrInternalError.WrapMessage("failed to issue session")
	}

	return &usecase.SessionOutput{
		SessionToken: token,
		ExpiresAt:    session.ExpiresAt,
		RedirectTo:   redirectTo,
	}, nil
}

func (srv *authService) findPrincipalAccount(ctx context.Context, principal *entity.Principal) (*entity.Account, error) {
	if principal == nil {
		return nil, domainerrors.ErrUnauthenticated
	}

	account, err := srv.accountRepo.FindByID(ctx, principal.Guard, principal.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, domainerrors.ErrUnauthenticated
		}
		srv.log(ctx).Error("Failed to load account", slog.Any("accountID", principal.AccountID), slog.Any("error", err))

		return nil, domainerrors.ErrInternalError.WrapMessage("failed to load account")
	}

	return account, nil
}

// allow fails open when the limiter backend errors; the limiter is admission control, not authentication.
func (srv *authService) allow(ctx context.Context, key string) bool {
	ok, err := srv.limiter.Allow(ctx, key)
	if err != nil {
		srv.log(ctx).Error("Rate limiter unavailable", slog.Any("error", err))

		return true
	}

	return ok
}

func (srv *authService) reset(ctx context.Context, key string) {
	if err := srv.limiter.Reset(ctx, key); err != nil {
		srv.log(ctx).Warn("Failed to reset rate limiter", slog.Any("error", err))
	}
}

func loginThrottleKey(guard entity.Guard, identifier, ip string) string {
	return "login:" + guard.String() + ":" + identifier + "|" + ip
}

func twoFactorThrottleKey(account *entity.Account) string {
	return "two-factor:" + account.Guard.String() + ":" + account.ID.String()
}

func resendThrottleKey(account *entity.Account) string {
	return "two-factor-resend:" + account.Guard.String() + ":" + account.ID.String()
}

func homePath(guard entity.Guard) string {
	return "/" + guard.PathSegment()
}

func setupPath(guard entity.Guard) string {
	return "/" + guard.PathSegment() + "/two-factor/setup"
}

// safeRedirect only keeps same-origin absolute paths.
func safeRedirect(intended string, guard entity.Guard) string {
	if strings.HasPrefix(intended, "/") && !strings.HasPrefix(intended, "//") && !strings.Contains(intended, "\\") {
		return intended
	}

	return homePath(guard)
}
