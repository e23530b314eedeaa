package qrcode

import (
	"encoding/json"
	"testing"

	"farmlink/config"
	domainerrors "farmlink/internal/domain/errors"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertPNG(t *testing.T, data []byte) {
	t.Helper()

	require.GreaterOrEqual(t, len(data), 4)
	assert.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, data[:4])
}

func TestNewQRCodeService(t *testing.T) {
	tests := []struct {
		name                 string
		size                 int
		errorCorrectionLevel string
	}{
		{"Low error correction", 256, "L"},
		{"Medium error correction", 256, "medium"},
		{"High error correction", 256, "Q"},
		{"Highest error correction", 256, "highest"},
		{"Default error correction", 256, "invalid"},
		{"Default size", 0, "M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewQRCodeService(tt.size, tt.errorCorrectionLevel)
			require.NotNil(t, svc)

			png, err := svc.GenerateFollowQR("farmer_123")
			require.NoError(t, err)
			assertPNG(t, png)
		})
	}
}

func TestNew_FromConfig(t *testing.T) {
	svc := New(&config.Config{QRCode: &config.QRCodeConfig{Size: 128, ErrorCorrectionLevel: "L"}})

	png, err := svc.GenerateFollowQR("farmer_456")
	require.NoError(t, err)
	assertPNG(t, png)

	svc = New(&config.Config{})
	png, err = svc.GenerateFollowQR("farmer_456")
	require.NoError(t, err)
	assertPNG(t, png)
}

func TestQRCodeService_GenerateFollowQR_RequiresFarmer(t *testing.T) {
	svc := NewQRCodeService(256, "M")

	_, err := svc.GenerateFollowQR("  ")
	assert.Error(t, err)
}

func TestQRCodeService_ParseFollowQR(t *testing.T) {
	svc := NewQRCodeService(256, "M")

	valid, err := json.Marshal(QRCodeData{FarmerID: "farmer_123", Type: "follow"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		data    string
		want    string
		wantErr bool
	}{
		{name: "valid payload", data: string(valid), want: "farmer_123"},
		{name: "not json", data: "farmer_123", wantErr: true},
		{name: "wrong type", data: `{"farmer_id":"farmer_123","type":"subscription"}`, wantErr: true},
		{name: "missing farmer", data: `{"farmer_id":"","type":"follow"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ParseFollowQR(tt.data)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domainerrors.ErrInvalidQRCode))

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
