package model

import (
	"fmt"
	"strings"
)

// botSignature is the fixed identity embedded in every marker. Changing it
// would orphan markers written by earlier versions.
const botSignature = "prpilot-bot"

// Markers holds the two comment-body sentinels scoped to one head SHA.
// The final marker means "this commit is already reviewed"; the claim marker
// means "a review of this commit is in progress". These sentinels are the
// only state the tool persists anywhere.
type Markers struct {
	Final string
	Claim string
}

// MarkersForSHA builds the exact, case-sensitive sentinels for a head SHA.
// The formats must round-trip through FindCommentWithMarker scanning.
func MarkersForSHA(sha string) Markers {
	return Markers{
		Final: fmt.Sprintf("<!-- %s sha=%s -->", botSignature, sha),
		Claim: fmt.Sprintf("<!-- %s claim sha=%s -->", botSignature, sha),
	}
}

// Comment is one existing comment/note on the review target.
type Comment struct {
	ID   string
	Body string
}

// FindCommentWithMarker returns the first comment whose body contains the
// marker, or nil. Comments are scanned in the order the host returned them.
func FindCommentWithMarker(comments []Comment, marker string) *Comment {
	for i := range comments {
		if strings.Contains(comments[i].Body, marker) {
			return &comments[i]
		}
	}
	return nil
}
