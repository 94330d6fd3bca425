package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/RUBESHR7/compass-qa/internal/generation"
	"github.com/RUBESHR7/compass-qa/internal/normalize"
	"github.com/RUBESHR7/compass-qa/internal/perception"
	"github.com/RUBESHR7/compass-qa/internal/perception/perceptiontest"
	"github.com/RUBESHR7/compass-qa/internal/prompt"
	"github.com/RUBESHR7/compass-qa/internal/story"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// genai starts the opencensus view worker at init
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
	)
}

func newController(t *testing.T, client perception.Client) *Controller {
	t.Helper()
	b, err := prompt.NewBuilder()
	require.NoError(t, err)
	return New(generation.NewEngine(client, b, generation.Options{}))
}

var loginStory = story.Story{Text: "As a user, I want to log in with email and password", Count: 5}

func fiveCaseReply() perceptiontest.Reply {
	return perceptiontest.Text(perceptiontest.ObjectReply("Login_TestCases.xlsx", perceptiontest.Cases(5, 3)))
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestController_Generate(t *testing.T) {
	c := newController(t, perceptiontest.New(fiveCaseReply()))
	assert.NotEmpty(t, c.ID())
	assert.Nil(t, c.Snapshot())

	result, err := c.Generate(context.Background(), loginStory)
	require.NoError(t, err)
	assert.Len(t, result.TestCases, 5)
	assert.Equal(t, 1, c.Version())
	assert.False(t, c.InFlight())

	transcript := c.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, RoleAI, transcript[0].Role)
	assert.Equal(t, Greeting, transcript[0].Text)
}

func TestController_SnapshotsDoNotAlias(t *testing.T) {
	c := newController(t, perceptiontest.New(fiveCaseReply()))
	returned, err := c.Generate(context.Background(), loginStory)
	require.NoError(t, err)

	returned.TestCases[0].Summary = "mutated"
	returned.TestCases[0].Steps[0].Description = "mutated"
	snap := c.Snapshot()
	snap.TestCases[1].Summary = "mutated"

	again := c.Snapshot()
	assert.Equal(t, "Case 1", again.TestCases[0].Summary)
	assert.Equal(t, "Case 1 step 1", again.TestCases[0].Steps[0].Description)
	assert.Equal(t, "Case 2", again.TestCases[1].Summary)
}

func TestController_GenerateFailureKeepsState(t *testing.T) {
	client := perceptiontest.New(fiveCaseReply(), perceptiontest.Text("not json at all"))
	c := newController(t, client)
	_, err := c.Generate(context.Background(), loginStory)
	require.NoError(t, err)
	before := mustJSON(t, c.Snapshot())

	_, err = c.Generate(context.Background(), loginStory)
	assert.ErrorIs(t, err, normalize.ErrMalformedResponse)
	assert.JSONEq(t, before, mustJSON(t, c.Snapshot()))
	assert.Equal(t, 1, c.Version())
}

func TestController_RefineSuccess(t *testing.T) {
	cases := perceptiontest.Cases(6, 2)
	client := perceptiontest.New(fiveCaseReply(),
		perceptiontest.Text(perceptiontest.ObjectReply("Login_Extended.xlsx", cases)))
	c := newController(t, client)
	_, err := c.Generate(context.Background(), loginStory)
	require.NoError(t, err)

	result, err := c.Refine(context.Background(), "Add a negative case for invalid email")
	require.NoError(t, err)
	assert.Len(t, result.TestCases, 6)
	assert.Equal(t, "TC_006", result.TestCases[5].ID)
	assert.Equal(t, 2, c.Version())

	transcript := c.Transcript()
	require.Len(t, transcript, 3)
	assert.Equal(t, Message{Role: RoleUser, Text: "Add a negative case for invalid email"}, Message{Role: transcript[1].Role, Text: transcript[1].Text})
	assert.Equal(t, `Done! I've updated the test cases and set the filename to "Login_Extended.xlsx".`, transcript[2].Text)
}

func TestController_RefineTransportFailureKeepsCollection(t *testing.T) {
	boom := &perception.TransportError{Provider: "gemini", Code: 503, Message: "overloaded"}
	client := perceptiontest.New(fiveCaseReply(), perceptiontest.Fail(boom))
	c := newController(t, client)
	_, err := c.Generate(context.Background(), loginStory)
	require.NoError(t, err)
	before := mustJSON(t, c.Snapshot())

	result, err := c.Refine(context.Background(), "remove case 2")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, generation.ErrRefinementFailed)
	var te *perception.TransportError
	assert.True(t, errors.As(err, &te))

	after := c.Snapshot()
	assert.Len(t, after.TestCases, 5)
	assert.Equal(t, before, mustJSON(t, after), "collection is byte-for-byte unchanged")
	assert.Equal(t, 1, c.Version())

	transcript := c.Transcript()
	require.Len(t, transcript, 3)
	assert.Equal(t, RoleUser, transcript[1].Role)
	assert.Equal(t, RefinementFailed, transcript[2].Text)
	assert.False(t, c.InFlight())
}

func TestController_RefineEmptyInstruction(t *testing.T) {
	client := perceptiontest.New(fiveCaseReply())
	c := newController(t, client)
	_, err := c.Generate(context.Background(), loginStory)
	require.NoError(t, err)

	_, err = c.Refine(context.Background(), "   ")
	assert.ErrorIs(t, err, generation.ErrEmptyInstruction)
	assert.Len(t, c.Transcript(), 1, "empty input is not recorded")
	assert.Equal(t, 1, client.Calls())
}

func TestController_RefineWithoutCollection(t *testing.T) {
	client := perceptiontest.New()
	c := newController(t, client)

	_, err := c.Refine(context.Background(), "add a case")
	assert.ErrorIs(t, err, generation.ErrNothingToRefine)
	assert.Zero(t, client.Calls())
	assert.Nil(t, c.Snapshot())
}

func TestController_BusyWhileInFlight(t *testing.T) {
	client := perceptiontest.New(fiveCaseReply(), fiveCaseReply())
	client.Gate = make(chan struct{})
	client.Started = make(chan struct{}, 1)
	c := newController(t, client)

	done := make(chan error, 1)
	go func() {
		_, err := c.Generate(context.Background(), loginStory)
		done <- err
	}()
	<-client.Started
	assert.True(t, c.InFlight())

	_, err := c.Generate(context.Background(), loginStory)
	assert.ErrorIs(t, err, ErrBusy)
	_, err = c.Refine(context.Background(), "remove case 2")
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, c.Reset(), ErrBusy)
	assert.Empty(t, c.Transcript(), "rejected calls do not touch state")

	client.Gate <- struct{}{}
	require.NoError(t, <-done)
	assert.False(t, c.InFlight())
	assert.Equal(t, 1, client.Calls())
}

func TestController_LoadAndReset(t *testing.T) {
	c := newController(t, perceptiontest.New())
	loaded, err := normalize.Normalize(perceptiontest.ObjectReply("Saved.xlsx", perceptiontest.Cases(2, 1)), normalize.Options{})
	require.NoError(t, err)

	require.NoError(t, c.Load(loaded))
	loaded.TestCases[0].Summary = "mutated"
	assert.Equal(t, "Case 1", c.Snapshot().TestCases[0].Summary)
	assert.Len(t, c.Transcript(), 1)

	require.NoError(t, c.Reset())
	assert.Nil(t, c.Snapshot())
	assert.Empty(t, c.Transcript())
	assert.Equal(t, 2, c.Version())
}
