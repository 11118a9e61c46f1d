package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainingTransitions(t *testing.T) {
	assert.True(t, TrainingTransitions[TrainingIdle][TrainingRunning])
	assert.True(t, TrainingTransitions[TrainingCompleted][TrainingRunning])
	assert.True(t, TrainingTransitions[TrainingFailed][TrainingRunning])

	// Only a resolution leaves RUNNING.
	assert.False(t, TrainingTransitions[TrainingRunning][TrainingRunning])
	assert.False(t, TrainingTransitions[TrainingIdle][TrainingCompleted])
}

func TestGenerationTransitionsAreTerminal(t *testing.T) {
	assert.Empty(t, GenerationTransitions[GenerationSucceeded])
	assert.Empty(t, GenerationTransitions[GenerationFailed])
	assert.True(t, GenerationTransitions[GenerationRunning][GenerationSucceeded])
	assert.True(t, GenerationTransitions[GenerationRunning][GenerationFailed])
}

func TestParseRole(t *testing.T) {
	for _, r := range Roles {
		parsed, err := ParseRole(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}
	_, err := ParseRole("owner")
	assert.Error(t, err)
}

func TestRoleCanTrain(t *testing.T) {
	assert.True(t, AdminRole.CanTrain())
	assert.True(t, EditorRole.CanTrain())
	assert.False(t, ViewerRole.CanTrain())
}

func TestIsImageContentType(t *testing.T) {
	assert.True(t, IsImageContentType("image/png"))
	assert.True(t, IsImageContentType("image/jpeg"))
	assert.False(t, IsImageContentType("application/pdf"))
	assert.False(t, IsImageContentType(""))
}

func TestPreviewHandleRelease(t *testing.T) {
	p := NewPreviewHandle(NewImageID())
	require.NotEmpty(t, p.URL())
	require.False(t, p.Released())

	p.Release()
	assert.True(t, p.Released())
	assert.Empty(t, p.URL())

	p.Release() // releasing twice is a no-op
	assert.True(t, p.Released())
}
