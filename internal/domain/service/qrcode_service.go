package service

// QRCodeService defines the interface for QR code generation and parsing services
type QRCodeService interface {
	// GenerateFollowQR generates a PNG QR code that lets marketmen follow a farmer
	GenerateFollowQR(farmerID string) ([]byte, error)

	// ParseFollowQR parses scanned QR code data and returns the farmer ID
	ParseFollowQR(qrData string) (string, error)
}
