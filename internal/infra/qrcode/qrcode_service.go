package qrcode

import (
	"encoding/json"
	"strings"

	"farmlink/config"
	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
)

const (
	defaultSize = 256
	followType  = "follow"
)

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// QRCodeData represents the QR code data structure
type QRCodeData struct {
	FarmerID string `json:"farmer_id"`
	Type     string `json:"type"`
}

// New creates the QR code service from configuration
func New(cfg *config.Config) service.QRCodeService {
	size, level := defaultSize, ""
	if cfg.QRCode != nil {
		size, level = cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel
	}

	return NewQRCodeService(size, level)
}

// NewQRCodeService creates a new QR code service instance
func NewQRCodeService(size int, errorCorrectionLevel string) service.QRCodeService {
	// Set error correction level
	var level qrcode.RecoveryLevel
	switch strings.ToLower(errorCorrectionLevel) {
	case "l", "low":
		level = qrcode.Low
	case "q", "high":
		level = qrcode.High
	case "h", "highest":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	if size <= 0 {
		size = defaultSize
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: level,
	}
}

// GenerateFollowQR generates a QR code that lets marketmen follow a farmer
func (s *qrcodeService) GenerateFollowQR(farmerID string) ([]byte, error) {
	if strings.TrimSpace(farmerID) == "" {
		return nil, errors.New("farmer ID is required")
	}

	jsonData, err := json.Marshal(QRCodeData{
		FarmerID: farmerID,
		Type:     followType,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal QR code data")
	}

	qrCode, err := qrcode.New(string(jsonData), s.errorCorrectionLevel)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create QR code")
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate PNG")
	}

	return pngBytes, nil
}

// ParseFollowQR parses scanned QR code data and returns the farmer ID
func (s *qrcodeService) ParseFollowQR(qrData string) (string, error) {
	var data QRCodeData
	if err := json.Unmarshal([]byte(qrData), &data); err != nil {
		return "", errors.WithStack(domainerrors.ErrInvalidQRCode.WithDetails("payload is not valid JSON"))
	}

	if data.Type != followType {
		return "", errors.WithStack(domainerrors.ErrInvalidQRCode.WithDetails("unexpected QR code type: " + data.Type))
	}

	farmerID := strings.TrimSpace(data.FarmerID)
	if farmerID == "" {
		return "", errors.WithStack(domainerrors.ErrInvalidQRCode.WithDetails("farmer ID is missing"))
	}

	return farmerID, nil
}
