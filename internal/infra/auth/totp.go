package auth

import (
	"net/url"
	"strconv"
	"time"

	"storehub/config"
	"storehub/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	totpPeriod = 30
	totpSkew   = 1
)

// totpService validates authenticator-app codes per RFC 6238.
type totpService struct {
	issuer string
	now    func() time.Time
}

// NewTOTPService is the constructor for totpService.
func NewTOTPService(cfg *config.Config) service.TOTPService {
	issuer := "storehub"
	if cfg != nil && cfg.Auth != nil && cfg.Auth.TwoFactor.Issuer != "" {
		issuer = cfg.Auth.TwoFactor.Issuer
	}

	return &totpService{issuer: issuer, now: time.Now}
}

// GenerateSecret creates a new secret and its otpauth:// URL.
func (s *totpService) GenerateSecret(accountName string) (secret, otpauthURL string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: accountName,
		Period:      totpPeriod,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", "", errors.Wrap(err, "failed to generate totp secret")
	}

	return key.Secret(), key.URL(), nil
}

// KeyURL encodes an existing secret the same way GenerateSecret does.
func (s *totpService) KeyURL(accountName, secret string) string {
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", s.issuer)
	v.Set("period", strconv.Itoa(totpPeriod))
	v.Set("algorithm", otp.AlgorithmSHA1.String())
	v.Set("digits", otp.DigitsSix.String())

	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + s.issuer + ":" + accountName,
		RawQuery: v.Encode(),
	}

	return u.String()
}

// Validate checks a code against the secret, accepting one step of clock drift.
func (s *totpService) Validate(code, secret string) bool {
	if code == "" || secret == "" {
		return false
	}

	ok, err := totp.ValidateCustom(code, secret, s.now().UTC(), totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})

	return err == nil && ok
}
