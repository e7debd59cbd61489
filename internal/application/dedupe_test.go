package application

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/prpilot/internal/domain/model"
)

func TestDecideClaimFreshTarget(t *testing.T) {
	markers := model.MarkersForSHA("abc123")
	decision := decideClaim(nil, markers, model.RunOptions{})
	assert.False(t, decision.Skip)
	assert.Empty(t, decision.UpdateID)
}

func TestDecideClaimSkipsOnFinalMarker(t *testing.T) {
	markers := model.MarkersForSHA("abc123")
	comments := []model.Comment{{ID: "1", Body: "report\n" + markers.Final}}
	decision := decideClaim(comments, markers, model.RunOptions{})
	assert.True(t, decision.Skip)
}

func TestDecideClaimSkipsOnClaimMarker(t *testing.T) {
	markers := model.MarkersForSHA("abc123")
	comments := []model.Comment{{ID: "1", Body: markers.Claim}}
	decision := decideClaim(comments, markers, model.RunOptions{})
	assert.True(t, decision.Skip)
}

func TestDecideClaimForceReusesClaimComment(t *testing.T) {
	markers := model.MarkersForSHA("abc123")
	comments := []model.Comment{{ID: "9", Body: markers.Claim}}
	decision := decideClaim(comments, markers, model.RunOptions{Force: true})
	assert.False(t, decision.Skip)
	assert.Equal(t, "9", decision.UpdateID)
}

func TestDecideClaimForcePrefersClaimOverFinal(t *testing.T) {
	markers := model.MarkersForSHA("abc123")
	comments := []model.Comment{
		{ID: "5", Body: markers.Final},
		{ID: "6", Body: markers.Claim},
	}
	decision := decideClaim(comments, markers, model.RunOptions{Force: true})
	assert.Equal(t, "6", decision.UpdateID)
}

func TestDecideClaimIgnoresOtherSHAMarkers(t *testing.T) {
	markers := model.MarkersForSHA("def456")
	stale := model.MarkersForSHA("abc123")
	comments := []model.Comment{{ID: "1", Body: stale.Final}}
	decision := decideClaim(comments, markers, model.RunOptions{})
	assert.False(t, decision.Skip)
	assert.Empty(t, decision.UpdateID)
}
