package killpipeline

import (
	"testing"
	"time"

	"github.com/mark3labs/assassin-core/domain"
	"github.com/stretchr/testify/assert"
)

func TestProposeInputCarriesPhotoBytes(t *testing.T) {
	kill := &domain.Kill{VerificationMethod: domain.VerificationPhoto}
	photoBytes := []byte("fake jpeg bytes")

	in := ProposeInput{
		Method:           domain.VerificationPhoto,
		VerificationData: map[string]any{"photoBytes": photoBytes},
	}
	if photoBytes, ok := in.VerificationData["photoBytes"].([]byte); ok {
		assert.NotEmpty(t, photoBytes)
	}
	_ = kill
}

func TestMaxLocationAgeConstant(t *testing.T) {
	assert.Equal(t, 5*time.Minute, MaxLocationAge)
}

func TestMaxAntiCheatSeverityConstant(t *testing.T) {
	assert.Equal(t, 7, MaxAntiCheatSeverity)
}

func TestMaxTransactionRetriesConstant(t *testing.T) {
	assert.Equal(t, 3, MaxTransactionRetries)
}
