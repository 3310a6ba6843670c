package domain

import "github.com/paulmach/orb"

// Coordinate is a WGS-84 lat/lng pair in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// Point converts the coordinate to an orb.Point ([lng, lat], orb's order).
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

// FromPoint builds a Coordinate from an orb.Point.
func FromPoint(p orb.Point) Coordinate {
	return Coordinate{Latitude: p[1], Longitude: p[0]}
}

// Polygon is an ordered list of coordinates forming a closed simple
// polygon.
type Polygon []Coordinate

// Ring converts the polygon to an orb.Ring, closing it if the caller
// passed an open ring.
func (p Polygon) Ring() orb.Ring {
	ring := make(orb.Ring, 0, len(p)+1)
	for _, c := range p {
		ring = append(ring, c.Point())
	}
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}
