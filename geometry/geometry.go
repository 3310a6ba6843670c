// Package geometry provides the pure spatial functions the core's
// geospatial reasoning is built on: haversine distance,
// polygon containment, bearing and destination projection. Built on
// github.com/paulmach/orb (orb/geo for the ellipsoid-free spherical math,
// orb/planar for polygon containment), the way aurel42-phileasgo's
// pkg/geo/helpers.go composes the same library for its containment and
// distance-to-geometry helpers.
package geometry

import (
	"math"

	"github.com/mark3labs/assassin-core/domain"
	"github.com/mark3labs/assassin-core/errs"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
	h3 "github.com/uber/h3-go/v4"
)

// EqualDistanceToleranceMeters is the threshold under which two distances
// are treated as equal rather than compared for strict ordering.
const EqualDistanceToleranceMeters = 1.0

func clamp(lat, lng float64) (float64, float64, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return 0, 0, errs.InvalidGeometry("non-finite coordinate")
	}
	if lat < -90 || lat > 90 {
		return 0, 0, errs.InvalidGeometry("latitude %f out of range [-90,90]", lat)
	}
	if lng < -180 || lng > 180 {
		return 0, 0, errs.InvalidGeometry("longitude %f out of range [-180,180]", lng)
	}
	return lat, lng, nil
}

// Coord is the minimal shape geometry needs from a caller's coordinate
// type; domain.Coordinate satisfies it structurally via the adapters
// below.
type Coord struct {
	Latitude  float64
	Longitude float64
}

func (c Coord) point() orb.Point { return orb.Point{c.Longitude, c.Latitude} }

// HaversineMeters returns the great-circle distance between a and b in
// meters, double precision.
func HaversineMeters(a, b Coord) (float64, error) {
	if _, _, err := clamp(a.Latitude, a.Longitude); err != nil {
		return 0, err
	}
	if _, _, err := clamp(b.Latitude, b.Longitude); err != nil {
		return 0, err
	}
	return geo.Distance(a.point(), b.point()), nil
}

// DistanceWithinTolerance reports whether d1 and d2 are equal within
// EqualDistanceToleranceMeters.
func DistanceWithinTolerance(d1, d2 float64) bool {
	return math.Abs(d1-d2) < EqualDistanceToleranceMeters
}

// PointInPolygon reports whether p lies inside poly (ray-casting via
// orb/planar, polygon assumed simple and closed). Boundary points count
// as inside: planar.PolygonContains alone is edge-exclusive
// for some edge orientations, so we additionally accept points within
// EqualDistanceToleranceMeters of any ring segment.
func PointInPolygon(p Coord, poly []Coord) (bool, error) {
	if len(poly) < 3 {
		return false, errs.InvalidGeometry("polygon requires >= 3 vertices, got %d", len(poly))
	}
	for _, v := range poly {
		if _, _, err := clamp(v.Latitude, v.Longitude); err != nil {
			return false, err
		}
	}
	if _, _, err := clamp(p.Latitude, p.Longitude); err != nil {
		return false, err
	}

	ring := make(orb.Ring, 0, len(poly)+1)
	for _, v := range poly {
		ring = append(ring, v.point())
	}
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}

	pt := p.point()
	if planar.PolygonContains(orb.Polygon{ring}, pt) {
		return true, nil
	}
	return onBoundary(pt, ring), nil
}

func onBoundary(pt orb.Point, ring orb.Ring) bool {
	for i := 0; i < len(ring)-1; i++ {
		if distanceToSegmentMeters(pt, ring[i], ring[i+1]) < EqualDistanceToleranceMeters {
			return true
		}
	}
	return false
}

func distanceToSegmentMeters(p, a, b orb.Point) float64 {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	if dx == 0 && dy == 0 {
		return geo.Distance(p, a)
	}
	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / (dx*dx + dy*dy)
	switch {
	case t < 0:
		return geo.Distance(p, a)
	case t > 1:
		return geo.Distance(p, b)
	default:
		proj := orb.Point{a[0] + t*dx, a[1] + t*dy}
		return geo.Distance(p, proj)
	}
}

// BearingDegrees returns the initial bearing from a to b in degrees,
// [0, 360).
func BearingDegrees(a, b Coord) (float64, error) {
	if _, _, err := clamp(a.Latitude, a.Longitude); err != nil {
		return 0, err
	}
	if _, _, err := clamp(b.Latitude, b.Longitude); err != nil {
		return 0, err
	}
	brng := geo.Bearing(a.point(), b.point())
	if brng < 0 {
		brng += 360
	}
	return brng, nil
}

// Destination returns the coordinate reached by travelling meters from
// origin along bearing degrees.
func Destination(origin Coord, bearingDegrees, meters float64) (Coord, error) {
	if _, _, err := clamp(origin.Latitude, origin.Longitude); err != nil {
		return Coord{}, err
	}
	p := geo.PointAtBearingAndDistance(origin.point(), bearingDegrees, meters)
	return Coord{Latitude: p[1], Longitude: p[0]}, nil
}

// DefaultH3Resolution buckets players into ~300m-wide hex cells (edge
// ~175m), a
// reasonable granularity for ProximityEngine's grid-distance pre-filter;
// the actual kill-eligibility distance is still exact haversine, this
// index is only a performance aid, grounded on aurel42-phileasgo's use
// of uber/h3-go for spatial indexing.
const DefaultH3Resolution = 9

// CellIndex returns the H3 cell containing c at the given resolution.
func CellIndex(c Coord, resolution int) (h3.Cell, error) {
	if _, _, err := clamp(c.Latitude, c.Longitude); err != nil {
		return 0, err
	}
	cell, err := h3.LatLngToCell(h3.NewLatLng(c.Latitude, c.Longitude), resolution)
	if err != nil {
		return 0, errs.InvalidGeometry("h3 index: %v", err)
	}
	return cell, nil
}

// NearbyCells reports whether a and b fall within maxRings H3 grid steps
// of each other at resolution, a cheap pre-filter callers use to skip an
// exact Haversine computation for pairs that are obviously too far apart
// to matter. A false negative (two cells the grid can't relate, e.g.
// across a base-cell boundary) is treated as "not nearby" rather than an
// error, since the caller only needs a conservative short-circuit.
func NearbyCells(a, b Coord, resolution, maxRings int) (bool, error) {
	ca, err := CellIndex(a, resolution)
	if err != nil {
		return false, err
	}
	cb, err := CellIndex(b, resolution)
	if err != nil {
		return false, err
	}
	if ca == cb {
		return true, nil
	}
	dist, err := h3.GridDistance(ca, cb)
	if err != nil {
		return false, nil
	}
	return dist <= maxRings, nil
}

// FromDomain adapts a domain.Coordinate to the package's own Coord, the
// boundary every other component crosses to reach these pure functions.
func FromDomain(c domain.Coordinate) Coord {
	return Coord{Latitude: c.Latitude, Longitude: c.Longitude}
}

// Haversine is HaversineMeters over domain.Coordinate, the signature
// every core component above geometry actually calls.
func Haversine(a, b domain.Coordinate) (float64, error) {
	return HaversineMeters(FromDomain(a), FromDomain(b))
}

// ContainsDomain is PointInPolygon over domain.Coordinate/domain.Polygon.
func ContainsDomain(p domain.Coordinate, poly domain.Polygon) (bool, error) {
	pts := make([]Coord, len(poly))
	for i, v := range poly {
		pts[i] = FromDomain(v)
	}
	return PointInPolygon(FromDomain(p), pts)
}
