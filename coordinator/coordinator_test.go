package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinPlayersToStartConstant(t *testing.T) {
	assert.Equal(t, 2, MinPlayersToStart)
}

func TestNewReturnsUsableCoordinator(t *testing.T) {
	c := New(nil, nil, nil)
	assert.NotNil(t, c)
}
