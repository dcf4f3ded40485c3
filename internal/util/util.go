package util

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Checksum returns the hex SHA256 digest of data.
func Checksum(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

// GenerateNumericCode returns a uniformly random decimal code of the given length.
func GenerateNumericCode(digits int) (string, error) {
	if digits <= 0 {
		return "", errors.New("digits must be positive")
	}

	var sb strings.Builder
	sb.Grow(digits)
	ten := big.NewInt(10)
	for range digits {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", errors.Wrap(err, "failed to read random digit")
		}
		sb.WriteByte(byte('0' + n.Int64()))
	}

	return sb.String(), nil
}

// NormalizePhoneNumber converts a loosely formatted phone number to E.164-ish form.
// A "00" prefix becomes "+", an existing "+" is kept, and anything else has its
// leading zeros dropped and countryCode prefixed.
func NormalizePhoneNumber(raw, countryCode string) string {
	hasPlus := strings.HasPrefix(strings.TrimSpace(raw), "+")

	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	number := digits.String()
	if number == "" {
		return ""
	}

	switch {
	case hasPlus:
		return "+" + number
	case strings.HasPrefix(number, "00"):
		return "+" + strings.TrimPrefix(number, "00")
	default:
		number = strings.TrimLeft(number, "0")
		if number == "" {
			return ""
		}

		return "+" + strings.TrimPrefix(countryCode, "+") + number
	}
}

// FormatMinorUnits renders an amount in minor units with two decimals.
func FormatMinorUnits(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}

	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// FormatBytes formats bytes into human readable format.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	const units = "KMGTPEZY"
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit && exp < len(units)-1; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), units[exp])
}

// FormatDuration formats duration into human readable format (e.g., "1h30m", "5m10s", "45s").
func FormatDuration(duration time.Duration) string {
	duration = duration.Round(time.Second)

	if duration < time.Minute {
		return fmt.Sprintf("%ds", int(duration.Seconds()))
	}

	if duration < time.Hour {
		m := int(duration.Minutes())
		s := int(duration.Seconds()) % 60

		return fmt.Sprintf("%dm%ds", m, s)
	}

	h := int(duration.Hours())
	m := int(duration.Minutes()) % 60

	return fmt.Sprintf("%dh%dm", h, m)
}
