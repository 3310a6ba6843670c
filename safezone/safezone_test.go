package safezone

import (
	"testing"
	"time"

	"github.com/mark3labs/assassin-core/domain"
	"github.com/stretchr/testify/assert"
)

func rectBoundary() domain.Polygon {
	return domain.Polygon{
		{Latitude: 40.0, Longitude: -80.0},
		{Latitude: 40.0, Longitude: -79.0},
		{Latitude: 41.0, Longitude: -79.0},
		{Latitude: 41.0, Longitude: -80.0},
	}
}

func TestValidateRadiusBounds(t *testing.T) {
	assert.NoError(t, validateRadius(5))
	assert.NoError(t, validateRadius(10000))
	assert.Error(t, validateRadius(4.9))
	assert.Error(t, validateRadius(10000.1))
}

func TestValidateWithinBoundaryRejectsOutside(t *testing.T) {
	game := &domain.Game{Boundary: rectBoundary()}
	err := validateWithinBoundary(game, domain.Coordinate{Latitude: 50.0, Longitude: -79.5})
	assert.Error(t, err)

	err = validateWithinBoundary(game, domain.Coordinate{Latitude: 40.5, Longitude: -79.5})
	assert.NoError(t, err)
}

func TestValidateTimedWindowRequiresEndAfterStart(t *testing.T) {
	start := time.Now()
	end := start.Add(-time.Hour)
	err := validateTimedWindow(&start, &end)
	assert.Error(t, err)

	end = start.Add(time.Hour)
	assert.NoError(t, validateTimedWindow(&start, &end))
}

func TestAuthorizesPrivateZone(t *testing.T) {
	z := &domain.SafeZone{
		Type:                domain.SafeZonePrivate,
		CreatedBy:           "owner",
		AuthorizedPlayerIDs: []string{"ally"},
	}
	assert.True(t, authorizes(z, "owner"))
	assert.True(t, authorizes(z, "ally"))
	assert.False(t, authorizes(z, "stranger"))
}

func TestAuthorizesRelocatableZoneOwnerOnly(t *testing.T) {
	z := &domain.SafeZone{Type: domain.SafeZoneRelocatable, CreatedBy: "owner"}
	assert.True(t, authorizes(z, "owner"))
	assert.False(t, authorizes(z, "ally"))
}

func TestIsActiveAtHonorsTimedWindow(t *testing.T) {
	start := time.Now()
	end := start.Add(time.Hour)
	z := &domain.SafeZone{Type: domain.SafeZoneTimed, StartTime: &start, EndTime: &end}

	assert.False(t, isActiveAt(z, start.Add(-time.Minute)))
	assert.True(t, isActiveAt(z, start.Add(time.Minute)))
	assert.False(t, isActiveAt(z, end.Add(time.Minute)))
}

func TestIsActiveAtPublicAlwaysActive(t *testing.T) {
	z := &domain.SafeZone{Type: domain.SafeZonePublic}
	assert.True(t, isActiveAt(z, time.Now()))
}
