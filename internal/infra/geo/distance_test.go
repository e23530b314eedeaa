package geo

import (
	"testing"

	"farmlink/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func TestHaversineCalculator_DistanceKm(t *testing.T) {
	calc := NewHaversineCalculator()

	tests := []struct {
		name  string
		from  entity.Location
		to    entity.Location
		want  float64
		delta float64
	}{
		{
			name: "same point",
			from: entity.Location{Lat: 10.66, Lon: 77.01},
			to:   entity.Location{Lat: 10.66, Lon: 77.01},
			want: 0,
		},
		{
			name:  "one degree of latitude",
			from:  entity.Location{Lat: 0, Lon: 0},
			to:    entity.Location{Lat: 1, Lon: 0},
			want:  111.2,
			delta: 0.5,
		},
		{
			name:  "Pollachi to Ooty",
			from:  entity.Location{Lat: 10.66, Lon: 77.01},
			to:    entity.Location{Lat: 11.41, Lon: 76.69},
			want:  90,
			delta: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.DistanceKm(tt.from, tt.to)
			assert.InDelta(t, tt.want, got, tt.delta)
			assert.InDelta(t, got, calc.DistanceKm(tt.to, tt.from), 1e-9)
		})
	}
}
