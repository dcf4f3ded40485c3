package service

// QRCodeService defines the interface for QR code generation
type QRCodeService interface {
	// GenerateEnrollmentQR renders an otpauth:// URL as a PNG for authenticator apps
	GenerateEnrollmentQR(otpauthURL string) ([]byte, error)
}
