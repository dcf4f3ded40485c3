package impl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"storehub/config"
	deliverycontext "storehub/internal/delivery/context"
	"storehub/internal/domain/entity"
	"storehub/internal/domain/service"
	"storehub/internal/infra/metrics"
	"storehub/internal/usecase"
	"storehub/internal/util"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

const otpDigits = 6

const (
	sendResultSent   = "sent"
	sendResultFailed = "send_failed"
)

// TwoFactorProviderParams holds the dependencies shared by the channel providers.
type TwoFactorProviderParams struct {
	fx.In

	OtpStore usecase.OtpStore
	Mail     service.MailTransport
	SMS      service.SMSTransport
	TOTP     service.TOTPService
	Config   *config.Config
	Logger   *slog.Logger
}

// NewTwoFactorProviderRegistry builds the channel registry used by the auth service.
func NewTwoFactorProviderRegistry(params TwoFactorProviderParams) usecase.TwoFactorProviders {
	params.Config.ApplyDefaults()
	ttl := params.Config.Auth.TwoFactor.OTPTTL
	totpProvider := NewTOTPProvider(params.TOTP)

	return usecase.NewTwoFactorProviders(
		NewEmailProvider(params.OtpStore, params.Mail, totpProvider, ttl, params.Config.Auth.TwoFactor.LegacyNullChannel, params.Logger),
		NewSMSProvider(params.OtpStore, params.SMS, ttl, params.Config.SMS.DefaultCountryCode, params.Logger),
		totpProvider,
	)
}

// --- Email ---

type emailProvider struct {
	otpStore  usecase.OtpStore
	mail      service.MailTransport
	totp      usecase.TwoFactorProvider
	ttl       time.Duration
	allowNull bool
	logger    *slog.Logger
}

// NewEmailProvider delivers codes by email. Verification also accepts legacy
// codes without a channel when allowNull is set, and authenticator codes when
// the account carries a secret.
func NewEmailProvider(
	otpStore usecase.OtpStore,
	mail service.MailTransport,
	totp usecase.TwoFactorProvider,
	ttl time.Duration,
	allowNull bool,
	logger *slog.Logger,
) usecase.TwoFactorProvider {
	return &emailProvider{
		otpStore:  otpStore,
		mail:      mail,
		totp:      totp,
		ttl:       ttl,
		allowNull: allowNull,
		logger:    logger,
	}
}

func (p *emailProvider) Channel() entity.OtpChannel {
	return entity.OtpChannelEmail
}

func (p *emailProvider) GenerateAndSend(ctx context.Context, account *entity.Account) bool {
	logger := deliverycontext.GetLoggerOrDefault(ctx, p.logger).With(slog.String("channel", "email"), slog.Any("accountID", account.ID))

	if account.Email == "" {
		logger.Error("Cannot send otp code, account has no email")

		return false
	}

	code, ok := issueCode(ctx, logger, p.otpStore, account.ID, entity.OtpChannelEmail, p.ttl)
	if !ok {
		return false
	}

	subject := "Your verification code"
	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(p.ttl.Minutes()))
	if err := p.mail.Send(ctx, account.Email, subject, body); err != nil {
		logger.Error("Failed to send otp email", slog.Any("error", err))
		metrics.ObserveTwoFactor("email", sendResultFailed)

		return false
	}
	metrics.ObserveTwoFactor("email", sendResultSent)

	return true
}

func (p *emailProvider) Verify(ctx context.Context, account *entity.Account, code string) bool {
	logger := deliverycontext.GetLoggerOrDefault(ctx, p.logger).With(slog.String("channel", "email"), slog.Any("accountID", account.ID))

	ok, err := p.otpStore.Verify(ctx, account.ID, entity.OtpChannelEmail, code)
	if err != nil {
		logger.Error("Failed to verify otp code", slog.Any("error", err))
	}
	if ok {
		return true
	}

	if p.allowNull {
		ok, err = p.otpStore.VerifyLegacy(ctx, account.ID, code)
		if err != nil {
			logger.Error("Failed to verify legacy otp code", slog.Any("error", err))
		}
		if ok {
			logger.Info("Accepted legacy otp code without channel")

			return true
		}
	}

	if account.HasTwoFactor() {
		return p.totp.Verify(ctx, account, code)
	}

	return false
}

// --- SMS ---

type smsProvider struct {
	otpStore    usecase.OtpStore
	sms         service.SMSTransport
	ttl         time.Duration
	countryCode string
	logger      *slog.Logger
}

// NewSMSProvider delivers codes by text message. It fails closed when the
// transport is not configured or the account has no usable phone number.
func NewSMSProvider(otpStore usecase.OtpStore, sms service.SMSTransport, ttl time.Duration, countryCode string, logger *slog.Logger) usecase.TwoFactorProvider {
	return &smsProvider{
		otpStore:    otpStore,
		sms:         sms,
		ttl:         ttl,
		countryCode: countryCode,
		logger:      logger,
	}
}

func (p *smsProvider) Channel() entity.OtpChannel {
	return entity.OtpChannelSMS
}

func (p *smsProvider) GenerateAndSend(ctx context.Context, account *entity.Account) bool {
	logger := deliverycontext.GetLoggerOrDefault(ctx, p.logger).With(slog.String("channel", "sms"), slog.Any("accountID", account.ID))

	if !p.sms.Configured() {
		logger.Error("SMS transport is not configured, refusing to issue otp code")

		return false
	}

	to := util.NormalizePhoneNumber(account.PhoneNumber, p.countryCode)
	if to == "" {
		logger.Error("Cannot send otp code, account has no phone number")

		return false
	}

	code, ok := issueCode(ctx, logger, p.otpStore, account.ID, entity.OtpChannelSMS, p.ttl)
	if !ok {
		return false
	}

	text := fmt.Sprintf("Your verification code is %s", code)
	if err := p.sms.Send(ctx, to, text); err != nil {
		logger.Error("Failed to send otp sms", slog.Any("error", err))
		metrics.ObserveTwoFactor("sms", sendResultFailed)

		return false
	}
	metrics.ObserveTwoFactor("sms", sendResultSent)

	return true
}

func (p *smsProvider) Verify(ctx context.Context, account *entity.Account, code string) bool {
	ok, err := p.otpStore.Verify(ctx, account.ID, entity.OtpChannelSMS, code)
	if err != nil {
		deliverycontext.GetLoggerOrDefault(ctx, p.logger).Error("Failed to verify otp code",
			slog.String("channel", "sms"), slog.Any("accountID", account.ID), slog.Any("error", err))

		return false
	}

	return ok
}

// --- TOTP ---

type totpProvider struct {
	totp service.TOTPService
}

// NewTOTPProvider checks authenticator-app codes against the account secret.
func NewTOTPProvider(totp service.TOTPService) usecase.TwoFactorProvider {
	return &totpProvider{totp: totp}
}

func (p *totpProvider) Channel() entity.OtpChannel {
	return entity.OtpChannelTOTP
}

// GenerateAndSend has nothing to deliver; the authenticator app derives the code.
func (p *totpProvider) GenerateAndSend(_ context.Context, account *entity.Account) bool {
	return account.HasTwoFactor()
}

func (p *totpProvider) Verify(_ context.Context, account *entity.Account, code string) bool {
	return p.totp.Validate(code, account.TwoFactorSecret)
}

func issueCode(
	ctx context.Context,
	logger *slog.Logger,
	store usecase.OtpStore,
	userID uuid.UUID,
	channel entity.OtpChannel,
	ttl time.Duration,
) (string, bool) {
	code, err := util.GenerateNumericCode(otpDigits)
	if err != nil {
		logger.Error("Failed to generate otp code", slog.Any("error", err))

		return "", false
	}

	if err := store.Issue(ctx, userID, channel, code, ttl); err != nil {
		logger.Error("Failed to store otp code", slog.Any("error", err))

		return "", false
	}

	return code, true
}
