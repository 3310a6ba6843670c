package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineMetersIdenticalPointsIsZero(t *testing.T) {
	a := Coord{Latitude: 40.44, Longitude: -79.94}
	d, err := HaversineMeters(a, a)
	require.NoError(t, err)
	assert.True(t, DistanceWithinTolerance(d, 0))
}

func TestHaversineMetersRejectsOutOfRangeLatitude(t *testing.T) {
	_, err := HaversineMeters(Coord{Latitude: 91, Longitude: 0}, Coord{})
	require.Error(t, err)
}

func TestPointInPolygonRejectsFewerThanThreeVertices(t *testing.T) {
	_, err := PointInPolygon(Coord{}, []Coord{{Latitude: 0, Longitude: 0}, {Latitude: 1, Longitude: 1}})
	require.Error(t, err)
}

func TestPointInPolygonAcceptsTriangle(t *testing.T) {
	poly := []Coord{
		{Latitude: 40.0, Longitude: -80.0},
		{Latitude: 40.0, Longitude: -79.0},
		{Latitude: 41.0, Longitude: -79.5},
	}
	inside, err := PointInPolygon(Coord{Latitude: 40.3, Longitude: -79.5}, poly)
	require.NoError(t, err)
	assert.True(t, inside)

	outside, err := PointInPolygon(Coord{Latitude: 50, Longitude: -79.5}, poly)
	require.NoError(t, err)
	assert.False(t, outside)
}

func TestPointInPolygonBoundaryPointIsInside(t *testing.T) {
	poly := []Coord{
		{Latitude: 40.0, Longitude: -80.0},
		{Latitude: 40.0, Longitude: -79.0},
		{Latitude: 41.0, Longitude: -79.0},
		{Latitude: 41.0, Longitude: -80.0},
	}
	// Midpoint of the bottom edge.
	onEdge := Coord{Latitude: 40.0, Longitude: -79.5}
	inside, err := PointInPolygon(onEdge, poly)
	require.NoError(t, err)
	assert.True(t, inside, "boundary points must count as inside")
}

func TestBearingDegreesIsNonNegative(t *testing.T) {
	b, err := BearingDegrees(Coord{Latitude: 40.44, Longitude: -79.94}, Coord{Latitude: 40.0, Longitude: -80.5})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, b, 0.0)
	assert.Less(t, b, 360.0)
}

func TestDestinationRoundTripsApproximateDistance(t *testing.T) {
	origin := Coord{Latitude: 40.44, Longitude: -79.94}
	dest, err := Destination(origin, 90, 1000)
	require.NoError(t, err)
	d, err := HaversineMeters(origin, dest)
	require.NoError(t, err)
	assert.InDelta(t, 1000, d, 2)
}
