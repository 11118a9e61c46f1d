package generation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archway-no/archway/internal/backend"
	"github.com/archway-no/archway/internal/notify"
	"github.com/archway-no/archway/internal/project"
	"github.com/archway-no/archway/pkg/model"
)

func testFixture(t *testing.T) (*Orchestrator, *backend.Manual, *project.Registry, model.ProjectID) {
	t.Helper()
	projects := project.New()
	p, err := projects.Create("Villa Nordstrand")
	require.NoError(t, err)

	b := backend.NewManual()
	o := New("oslo-studio", projects, b, notify.NewLog())
	return o, b, projects, p.ID
}

func imageRef(url string) *model.ImageRef {
	return &model.ImageRef{ID: model.NewImageID(), URL: url}
}

func TestSubmitRequiresBothImages(t *testing.T) {
	o, _, _, projectID := testFixture(t)

	_, err := o.Submit(context.Background(), nil, imageRef("style://x"), projectID, "")
	require.ErrorIs(t, err, ErrMissingInput)

	_, err = o.Submit(context.Background(), imageRef("input://x"), nil, projectID, "")
	require.ErrorIs(t, err, ErrMissingInput)

	assert.Empty(t, o.Jobs(), "a rejected submission creates nothing")
}

func TestSubmitRequiresExistingProject(t *testing.T) {
	o, _, _, _ := testFixture(t)

	_, err := o.Submit(
		context.Background(), imageRef("input://x"), imageRef("style://x"), "gone", "Bolig")
	require.ErrorIs(t, err, ErrUnknownProject)
	assert.Empty(t, o.Jobs())
}

func TestCategoryIsOptional(t *testing.T) {
	o, _, _, projectID := testFixture(t)

	jobID, err := o.Submit(
		context.Background(), imageRef("input://x"), imageRef("style://x"), projectID, "")
	require.NoError(t, err)
	assert.Equal(t, model.GenerationRunning, o.State(jobID))
}

func TestDuplicatePendingRequestIsRejected(t *testing.T) {
	o, _, _, projectID := testFixture(t)
	input, style := imageRef("input://x"), imageRef("style://x")

	jobID, err := o.Submit(context.Background(), input, style, projectID, "Bolig")
	require.NoError(t, err)

	_, err = o.Submit(context.Background(), input, style, projectID, "Bolig")
	require.ErrorIs(t, err, ErrDuplicatePending)
	require.Len(t, o.Jobs(), 1)

	// Once resolved, the same request may be submitted again.
	o.Resolve(jobID, nil, "model overloaded")
	_, err = o.Submit(context.Background(), input, style, projectID, "Bolig")
	require.NoError(t, err)
}

func TestDistinctRequestsRunConcurrently(t *testing.T) {
	o, _, _, projectID := testFixture(t)

	first, err := o.Submit(
		context.Background(), imageRef("input://a"), imageRef("style://a"), projectID, "")
	require.NoError(t, err)
	second, err := o.Submit(
		context.Background(), imageRef("input://b"), imageRef("style://b"), projectID, "")
	require.NoError(t, err)

	assert.Equal(t, model.GenerationRunning, o.State(first))
	assert.Equal(t, model.GenerationRunning, o.State(second))
}

func TestOutOfOrderResolution(t *testing.T) {
	o, _, projects, projectID := testFixture(t)

	first, err := o.Submit(
		context.Background(), imageRef("input://a"), imageRef("style://a"), projectID, "")
	require.NoError(t, err)
	second, err := o.Submit(
		context.Background(), imageRef("input://b"), imageRef("style://b"), projectID, "")
	require.NoError(t, err)

	// The later submission completes first.
	secondResult := model.ImageRef{ID: model.NewImageID(), URL: "render://b"}
	o.Resolve(second, &secondResult, "")
	assert.Equal(t, model.GenerationSucceeded, o.State(second))
	assert.Equal(t, model.GenerationRunning, o.State(first))

	firstResult := model.ImageRef{ID: model.NewImageID(), URL: "render://a"}
	o.Resolve(first, &firstResult, "")

	got, ok := projects.Get(projectID)
	require.True(t, ok)
	require.Len(t, got.Renders, 2)
	assert.Equal(t, firstResult, got.Renders[0], "attachment order follows completion order")
	assert.Equal(t, secondResult, got.Renders[1])
}

func TestSuccessAttachesResultToProjectHead(t *testing.T) {
	o, _, projects, projectID := testFixture(t)

	jobID, err := o.Submit(
		context.Background(), imageRef("input://x"), imageRef("style://x"), projectID, "Bolig")
	require.NoError(t, err)

	result := model.ImageRef{ID: model.NewImageID(), URL: "render://x"}
	o.Resolve(jobID, &result, "")

	job, err := o.Job(jobID)
	require.NoError(t, err)
	assert.Equal(t, model.GenerationSucceeded, job.State)
	assert.Equal(t, &result, job.Result)

	got, ok := projects.Get(projectID)
	require.True(t, ok)
	require.NotEmpty(t, got.Renders)
	assert.Equal(t, result, got.Renders[0])
}

func TestFailureClearsResultAndAllowsResubmit(t *testing.T) {
	o, _, projects, projectID := testFixture(t)

	jobID, err := o.Submit(
		context.Background(), imageRef("input://x"), imageRef("style://x"), projectID, "")
	require.NoError(t, err)

	o.Resolve(jobID, nil, "model overloaded")
	job, err := o.Job(jobID)
	require.NoError(t, err)
	assert.Equal(t, model.GenerationFailed, job.State)
	assert.Nil(t, job.Result)
	assert.Equal(t, "model overloaded", job.Error)

	got, ok := projects.Get(projectID)
	require.True(t, ok)
	assert.Empty(t, got.Renders, "a failed job attaches nothing")
}

func TestResolutionAfterProjectDeletion(t *testing.T) {
	o, _, projects, projectID := testFixture(t)

	jobID, err := o.Submit(
		context.Background(), imageRef("input://x"), imageRef("style://x"), projectID, "")
	require.NoError(t, err)

	projects.Remove(projectID)

	// The orphaned attachment is dropped silently; nothing panics and the
	// deleted project does not reappear.
	result := model.ImageRef{ID: model.NewImageID(), URL: "render://x"}
	o.Resolve(jobID, &result, "")

	assert.Equal(t, model.GenerationSucceeded, o.State(jobID))
	assert.Empty(t, projects.List())
}

func TestStaleResolutionIsDropped(t *testing.T) {
	o, _, _, projectID := testFixture(t)

	jobID, err := o.Submit(
		context.Background(), imageRef("input://x"), imageRef("style://x"), projectID, "")
	require.NoError(t, err)

	result := model.ImageRef{ID: model.NewImageID(), URL: "render://x"}
	o.Resolve(jobID, &result, "")
	o.Resolve(jobID, nil, "late failure")
	assert.Equal(t, model.GenerationSucceeded, o.State(jobID))

	o.Resolve("unknown-job", &result, "")
	assert.Equal(t, model.GenerationIdle, o.State("unknown-job"))
}
