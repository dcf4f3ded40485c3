package auth

import (
	"testing"
	"time"

	"storehub/config"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTOTPService_GenerateAndValidate(t *testing.T) {
	svc := NewTOTPService(&config.Config{Auth: &config.AuthConfig{TwoFactor: config.TwoFactorConfig{Issuer: "StoreHub"}}})

	secret, url, err := svc.GenerateSecret("owner@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, secret)
	assert.Contains(t, url, "otpauth://totp/")
	assert.Contains(t, url, "issuer=StoreHub")

	code, err := totp.GenerateCode(secret, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, svc.Validate(code, secret))
}

func TestTOTPService_SkewWindow(t *testing.T) {
	const secret = "JBSWY3DPEHPK3PXP"
	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := &totpService{issuer: "storehub", now: func() time.Time { return fixed }}

	opts := totp.ValidateOpts{Period: totpPeriod, Digits: otp.DigitsSix, Algorithm: otp.AlgorithmSHA1}

	previous, err := totp.GenerateCodeCustom(secret, fixed.Add(-30*time.Second), opts)
	require.NoError(t, err)
	assert.True(t, svc.Validate(previous, secret))

	stale, err := totp.GenerateCodeCustom(secret, fixed.Add(-5*time.Minute), opts)
	require.NoError(t, err)
	assert.False(t, svc.Validate(stale, secret))
}

func TestTOTPService_EmptyInputs(t *testing.T) {
	svc := NewTOTPService(nil)

	assert.False(t, svc.Validate("", "JBSWY3DPEHPK3PXP"))
	assert.False(t, svc.Validate("123456", ""))
}

func TestTOTPService_KeyURL(t *testing.T) {
	svc := NewTOTPService(&config.Config{})

	raw := svc.KeyURL("owner@example.com", "JBSWY3DPEHPK3PXP")

	key, err := otp.NewKeyFromURL(raw)
	require.NoError(t, err)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", key.Secret())
	assert.Equal(t, "storehub", key.Issuer())
	assert.Equal(t, "owner@example.com", key.AccountName())
}
