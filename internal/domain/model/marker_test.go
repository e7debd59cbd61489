package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkersForSHA(t *testing.T) {
	m := MarkersForSHA("abc123")

	assert.Equal(t, "<!-- prpilot-bot sha=abc123 -->", m.Final)
	assert.Equal(t, "<!-- prpilot-bot claim sha=abc123 -->", m.Claim)
}

func TestMarkersRoundTripThroughScanning(t *testing.T) {
	m := MarkersForSHA("deadbeef")
	comments := []Comment{
		{ID: "1", Body: "unrelated chatter"},
		{ID: "2", Body: "# Review\n\nbody text\n\n" + m.Final},
	}

	found := FindCommentWithMarker(comments, m.Final)
	require.NotNil(t, found)
	assert.Equal(t, "2", found.ID)

	assert.Nil(t, FindCommentWithMarker(comments, m.Claim))
}

func TestMarkerScanningIsSHAScoped(t *testing.T) {
	old := MarkersForSHA("oldsha")
	current := MarkersForSHA("newsha")
	comments := []Comment{{ID: "9", Body: old.Final}}

	assert.Nil(t, FindCommentWithMarker(comments, current.Final),
		"a final marker for a previous commit must not satisfy the current one")
}

func TestMarkerScanningIsCaseSensitive(t *testing.T) {
	m := MarkersForSHA("AbC")
	comments := []Comment{{ID: "1", Body: "<!-- prpilot-bot sha=abc -->"}}
	assert.Nil(t, FindCommentWithMarker(comments, m.Final))
}

func TestTokenUsageAdd(t *testing.T) {
	n := func(v int64) *int64 { return &v }

	var total TokenUsage
	total.Add(TokenUsage{Prompt: n(10), Completion: n(5), Total: n(15)})
	total.Add(TokenUsage{Prompt: n(7)})
	total.Add(TokenUsage{}) // unavailable sample contributes nothing

	require.NotNil(t, total.Prompt)
	assert.EqualValues(t, 17, *total.Prompt)
	require.NotNil(t, total.Completion)
	assert.EqualValues(t, 5, *total.Completion)
	require.NotNil(t, total.Total)
	assert.EqualValues(t, 15, *total.Total)
}

func TestTokenUsageAvailable(t *testing.T) {
	var u TokenUsage
	assert.False(t, u.Available())

	v := int64(3)
	u.Total = &v
	assert.True(t, u.Available())
}
