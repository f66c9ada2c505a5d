package suggestion

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/macroplan/v1/internal/domain/nutrition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRequest(t *testing.T) *Request {
	t.Helper()
	return NewRequest(uuid.New(), 7, time.Now())
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusQueued.Terminal())
	assert.False(t, StatusContactingProvider.Terminal())
	assert.False(t, StatusWaitingForResponse.Terminal())
	assert.False(t, StatusParsingResponse.Terminal())
	assert.True(t, StatusReady.Terminal())
	assert.True(t, StatusError.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestAdvanceRefusesTerminal(t *testing.T) {
	r := newTestRequest(t)

	require.True(t, r.Advance(StatusContactingProvider))
	require.True(t, r.Advance(StatusWaitingForResponse))

	r.Cancel()
	assert.False(t, r.Advance(StatusParsingResponse))
	assert.Equal(t, StatusCancelled, r.Status)
}

func TestCancelledWinsOverLateCompletion(t *testing.T) {
	r := newTestRequest(t)
	r.Advance(StatusWaitingForResponse)
	r.Cancel()

	r.Complete([]Suggestion{{FoodID: 1, Quantity: 1}}, Totals{Items: 1})

	assert.Equal(t, StatusCancelled, r.Status, "a late result never resurrects a cancelled job")
	assert.Len(t, r.Suggestions, 1, "the payload is still attached for the retention window")
}

func TestCancelIdempotent(t *testing.T) {
	r := newTestRequest(t)
	r.Complete(nil, Totals{})
	require.Equal(t, StatusReady, r.Status)

	r.Cancel()
	assert.Equal(t, StatusReady, r.Status, "cancel after ready is a no-op")

	r2 := newTestRequest(t)
	r2.Cancel()
	r2.Cancel()
	assert.Equal(t, StatusCancelled, r2.Status)
}

func TestFailKeepsTerminalStatus(t *testing.T) {
	r := newTestRequest(t)
	r.Cancel()

	r.Fail("provider exploded")

	assert.Equal(t, StatusCancelled, r.Status)
	assert.Empty(t, r.Error)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	r := newTestRequest(t)
	r.Complete([]Suggestion{{FoodID: 1, Quantity: 1, Name: "oats"}}, Totals{Items: 1})

	snap := r.Snapshot()
	snap.Suggestions[0].Name = "mutated"
	snap.Totals.Items = 99

	assert.Equal(t, "oats", r.Suggestions[0].Name)
	assert.Equal(t, 1, r.Totals.Items)
}

func TestSumTotals(t *testing.T) {
	set := []Suggestion{
		{Quantity: 2, PerServing: nutrition.Macros{Calories: 100.4, Protein: 10}},
		{Quantity: 1, PerServing: nutrition.Macros{Calories: 55.3, Protein: 3.06}},
	}

	totals := SumTotals(set)

	assert.Equal(t, 2, totals.Items)
	assert.Equal(t, 256.0, totals.Calories)
	assert.InDelta(t, 23.1, totals.Protein, 0.0001)
}
