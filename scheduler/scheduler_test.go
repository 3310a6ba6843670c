package scheduler

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaultsMaxFanoutToGOMAXPROCS(t *testing.T) {
	sch := New(nil, nil, nil, nil, Config{TickInterval: 30 * time.Second, TickDeadline: 25 * time.Second})
	assert.Equal(t, runtime.GOMAXPROCS(0)*4, sch.maxFanout)
}

func TestNewHonorsExplicitMaxFanout(t *testing.T) {
	sch := New(nil, nil, nil, nil, Config{MaxFanout: 7})
	assert.Equal(t, 7, sch.maxFanout)
}

func TestLeaseKeyPrefixIsStable(t *testing.T) {
	assert.Equal(t, "scheduler:game:", LeaseKeyPrefix)
}
