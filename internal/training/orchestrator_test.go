package training

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archway-no/archway/internal/backend"
	"github.com/archway-no/archway/internal/dataset"
	"github.com/archway-no/archway/internal/member"
	"github.com/archway-no/archway/internal/notify"
	"github.com/archway-no/archway/pkg/model"
)

func testFixture(t *testing.T, images int) (*Orchestrator, *backend.Manual, *member.Registry) {
	t.Helper()
	d := dataset.New()
	files := make([]model.FileUpload, images)
	for i := range files {
		files[i] = model.FileUpload{Name: "ref.jpg", ContentType: "image/jpeg"}
	}
	d.AddImages(files)

	members := member.New("Kari", "kari@archway.no")
	b := backend.NewManual()
	o := New("oslo-studio", d, members, b, notify.NewLog())
	return o, b, members
}

func TestSubmitRequiresOpenGate(t *testing.T) {
	o, _, r := testFixture(t, dataset.MinTrainingImages-1)

	_, err := o.Submit(context.Background(), r.BootstrapID())
	require.ErrorIs(t, err, ErrGateClosed)
	assert.Equal(t, model.TrainingIdle, o.State())
}

func TestSubmitRequiresTrainingRole(t *testing.T) {
	o, _, r := testFixture(t, dataset.MinTrainingImages)

	viewer, err := r.Invite("viewer@archway.no", model.ViewerRole)
	require.NoError(t, err)
	_, err = o.Submit(context.Background(), viewer.ID)
	require.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, model.TrainingIdle, o.State())

	// Unknown callers are rejected too.
	_, err = o.Submit(context.Background(), "stranger")
	require.ErrorIs(t, err, ErrPermissionDenied)

	editor, err := r.Invite("editor@archway.no", model.EditorRole)
	require.NoError(t, err)
	_, err = o.Submit(context.Background(), editor.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TrainingRunning, o.State())
}

func TestSecondSubmitWhileRunningIsRejected(t *testing.T) {
	o, _, r := testFixture(t, dataset.MinTrainingImages)

	jobID, err := o.Submit(context.Background(), r.BootstrapID())
	require.NoError(t, err)

	_, err = o.Submit(context.Background(), r.BootstrapID())
	require.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Equal(t, jobID, o.Job().ID, "the running job is unchanged")
	assert.Equal(t, model.TrainingRunning, o.State())
}

func TestResolveSuccessAndRetrain(t *testing.T) {
	o, _, r := testFixture(t, dataset.MinTrainingImages)

	jobID, err := o.Submit(context.Background(), r.BootstrapID())
	require.NoError(t, err)

	o.Resolve(jobID, true, "")
	assert.Equal(t, model.TrainingCompleted, o.State())

	// A terminal state is re-enterable through a new submission.
	second, err := o.Submit(context.Background(), r.BootstrapID())
	require.NoError(t, err)
	assert.NotEqual(t, jobID, second)
	assert.Equal(t, model.TrainingRunning, o.State())
}

func TestFailureIsStickyUntilResubmit(t *testing.T) {
	o, _, r := testFixture(t, dataset.MinTrainingImages)

	jobID, err := o.Submit(context.Background(), r.BootstrapID())
	require.NoError(t, err)

	o.Resolve(jobID, false, "gpu quota exceeded")
	require.Equal(t, model.TrainingFailed, o.State())
	assert.Equal(t, "gpu quota exceeded", o.Job().Error)

	// The failure does not silently revert to idle; a retry is an explicit
	// new submission.
	_, err = o.Submit(context.Background(), r.BootstrapID())
	require.NoError(t, err)
	assert.Equal(t, model.TrainingRunning, o.State())
	assert.Empty(t, o.Job().Error)
}

func TestStaleResolutionIsDropped(t *testing.T) {
	o, _, r := testFixture(t, dataset.MinTrainingImages)

	jobID, err := o.Submit(context.Background(), r.BootstrapID())
	require.NoError(t, err)
	o.Resolve(jobID, true, "")

	// A duplicate or unknown resolution leaves the record untouched.
	o.Resolve(jobID, false, "late failure")
	assert.Equal(t, model.TrainingCompleted, o.State())
	o.Resolve("unknown-job", false, "noise")
	assert.Equal(t, model.TrainingCompleted, o.State())
}
