// Package geo provides straight-line distance estimates between coordinates.
package geo

import (
	"farmlink/internal/domain/entity"
	"farmlink/internal/domain/service"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

type haversineCalculator struct{}

// NewHaversineCalculator returns a calculator using the haversine formula on a spherical earth.
func NewHaversineCalculator() service.DistanceCalculator {
	return haversineCalculator{}
}

// DistanceKm returns the great-circle distance between two points in kilometres.
func (haversineCalculator) DistanceKm(from, to entity.Location) float64 {
	// orb points are (lon, lat)
	p1 := orb.Point{from.Lon, from.Lat}
	p2 := orb.Point{to.Lon, to.Lat}

	return geo.DistanceHaversine(p1, p2) / 1000
}
