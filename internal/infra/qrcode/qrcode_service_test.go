package qrcode

import (
	"bytes"
	"image/png"
	"testing"

	"storehub/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleURL = "otpauth://totp/storehub:owner@example.com?secret=JBSWY3DPEHPK3PXP&issuer=storehub"

func TestNewQRCodeService(t *testing.T) {
	tests := []struct {
		name                 string
		size                 int
		errorCorrectionLevel string
	}{
		{"Low error correction", 256, "L"},
		{"Medium error correction", 256, "M"},
		{"High error correction", 256, "Q"},
		{"Highest error correction", 256, "H"},
		{"Default error correction", 256, "invalid"},
		{"Default size", 0, "M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewQRCodeService(tt.size, tt.errorCorrectionLevel)
			assert.NotNil(t, service)
		})
	}
}

func TestQRCodeService_GenerateEnrollmentQR(t *testing.T) {
	service := NewQRCodeService(200, "M")

	qrBytes, err := service.GenerateEnrollmentQR(sampleURL)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(qrBytes))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestQRCodeService_RejectsNonOtpauthURL(t *testing.T) {
	service := NewQRCodeService(256, "M")

	_, err := service.GenerateEnrollmentQR("https://example.com")
	assert.Error(t, err)
}

func TestNewQRCodeServiceFromConfig(t *testing.T) {
	service := NewQRCodeServiceFromConfig(&config.Config{})

	qrBytes, err := service.GenerateEnrollmentQR(sampleURL)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, qrBytes[:4])
}
