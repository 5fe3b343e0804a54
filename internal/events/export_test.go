package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youssifElhelaly12/rayaBackend/internal/models"
	"github.com/youssifElhelaly12/rayaBackend/internal/userevents"
)

func TestBuildExport(t *testing.T) {
	event := &models.Event{ID: 5, EventName: "Summit", EventPage: "https://x/summit"}
	qs := []models.Question{
		{ID: 10, Question: "Dietary preference"},
		{ID: 11, Question: "T-shirt size"},
	}
	invited := []userevents.InvitedUser{
		{
			UserEvent: models.UserEvent{UserID: 1, EventID: 5, EmailStatus: true, AcceptedInvitationStatus: true},
			User:      models.User{ID: 1, FirstName: "Sara", LastName: "Hassan", Email: "sara@x.com", Phone: "01012345678"},
		},
		{
			UserEvent: models.UserEvent{UserID: 2, EventID: 5, EmailStatus: true},
			User:      models.User{ID: 2, FirstName: "Omar", LastName: "Ali", Email: "omar@x.com"},
		},
	}
	answerMap := map[int64]map[int64]string{
		1: {10: "vegetarian", 11: "M"},
	}

	records := BuildExport(event, invited, qs, answerMap)

	// 3 metadata rows, blank separator, header, one row per invitee.
	require.Len(t, records, 3+1+1+len(invited))
	assert.Equal(t, []string{"Event", "Summit"}, records[0])
	assert.Equal(t, []string{"Page", "https://x/summit"}, records[1])
	assert.Equal(t, []string{"Exported Invitees", "2"}, records[2])
	assert.Empty(t, records[3])

	header := records[4]
	require.Len(t, header, 7+len(qs))
	assert.Equal(t, "User ID", header[0])
	assert.Equal(t, "Accepted", header[6])
	assert.Equal(t, "Dietary preference", header[7])
	assert.Equal(t, "T-shirt size", header[8])

	first := records[5]
	require.Len(t, first, 7+len(qs))
	assert.Equal(t, []string{"1", "Sara", "Hassan", "sara@x.com", "01012345678", "true", "true", "vegetarian", "M"}, first)

	// No answers recorded leaves the question cells empty.
	second := records[6]
	assert.Equal(t, []string{"2", "Omar", "Ali", "omar@x.com", "", "true", "false", "", ""}, second)
}

func TestBuildExportNoInvitees(t *testing.T) {
	records := BuildExport(&models.Event{EventName: "Empty"}, nil, nil, nil)
	require.Len(t, records, 5)
	assert.Equal(t, []string{"Exported Invitees", "0"}, records[2])
	assert.Len(t, records[4], 7)
}
