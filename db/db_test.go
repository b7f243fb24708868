package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/leadflowhq/lead-services/models"
)

var testDB *LeadDB

// TestMain spins up a disposable Postgres for the suite. Without a
// container runtime the suite is skipped rather than failed.
func TestMain(m *testing.M) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "leads",
			"POSTGRES_PASSWORD": "leads",
			"POSTGRES_DB":       "leads_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		fmt.Println("no container runtime available, skipping database tests:", err)
		os.Exit(0)
	}

	host, err := container.Host(ctx)
	if err != nil {
		fmt.Println("could not resolve container host:", err)
		os.Exit(0)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		fmt.Println("could not resolve container port:", err)
		os.Exit(0)
	}

	os.Setenv("DATABASE_URL", fmt.Sprintf(
		"postgres://leads:leads@%s:%s/leads_test?sslmode=disable", host, port.Port()))

	logger := zerolog.Nop()
	testDB, err = NewLeadDB(nil, &logger)
	if err != nil {
		fmt.Println("could not connect to test database:", err)
		container.Terminate(ctx)
		os.Exit(1)
	}

	if err := testDB.Migrate(); err != nil {
		fmt.Println("could not run migrations:", err)
		container.Terminate(ctx)
		os.Exit(1)
	}

	code := m.Run()

	testDB.DB.Close()
	container.Terminate(ctx)
	os.Exit(code)
}

func createTestLead(t *testing.T, email string) *models.Lead {
	t.Helper()

	lead := &models.Lead{
		FirstName:   "Dana",
		LastName:    "Reyes",
		CompanyName: "Acme Software",
		PhoneNumber: "+1 (555) 000-1111",
		Email:       email,
		Score:       55,
		Tier:        models.TierWarm,
	}
	tx, err := testDB.CreateLead(lead)
	assert.NoError(t, err, "expected lead creation to start")
	assert.NoError(t, testDB.CommitTransaction(tx))
	return lead
}

func TestCreateAndGetLead(t *testing.T) {
	lead := createTestLead(t, "create-get@example.com")

	got, err := testDB.GetLead(lead.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Dana", got.FirstName)
	assert.Equal(t, models.StatusNew, got.Status, "new leads default to the new status")
	assert.Equal(t, 55, got.Score)
	assert.Nil(t, got.AssignedTo)
}

func TestCheckLeadExists(t *testing.T) {
	createTestLead(t, "exists@example.com")

	exists, err := testDB.CheckLeadExists("exists@example.com")
	assert.NoError(t, err)
	assert.True(t, exists)

	exists, err = testDB.CheckLeadExists("nobody@example.com")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestGetLeadByPhoneDigits(t *testing.T) {
	lead := createTestLead(t, "phone@example.com")

	got, err := testDB.GetLeadByPhoneDigits("15550001111")
	assert.NoError(t, err)
	assert.Equal(t, lead.ID, got.ID)

	// Empty digits must never match a stored number.
	_, err = testDB.GetLeadByPhoneDigits("")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestGetLeadByEmailMissing(t *testing.T) {
	_, err := testDB.GetLeadByEmail("missing@example.com")
	assert.True(t, errors.Is(err, sql.ErrNoRows), "unknown email reads as not-found, not a lookup failure")
}

func TestListLeadsFilters(t *testing.T) {
	lead := createTestLead(t, "filters@example.com")

	leads, total, err := testDB.ListLeads(models.LeadFilter{Status: models.StatusNew})
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, total, 1)
	found := false
	for _, l := range leads {
		if l.ID == lead.ID {
			found = true
		}
	}
	assert.True(t, found, "expected the created lead in the new-status listing")

	_, total, err = testDB.ListLeads(models.LeadFilter{Query: "acme"})
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, total, 1, "company search is case-insensitive")
}

func TestUpdateLead(t *testing.T) {
	lead := createTestLead(t, "update@example.com")

	lead.Status = models.StatusInterested
	lead.Score = 80
	lead.Tier = models.TierHot
	tx, err := testDB.UpdateLead(lead)
	assert.NoError(t, err)
	assert.NoError(t, testDB.CommitTransaction(tx))

	got, err := testDB.GetLead(lead.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusInterested, got.Status)
	assert.Equal(t, models.TierHot, got.Tier)
}

func TestDeleteLeadCascades(t *testing.T) {
	lead := createTestLead(t, "delete@example.com")

	assert.NoError(t, testDB.AddConversation(&models.Conversation{
		LeadID:         lead.ID,
		Channel:        models.ChannelEmail,
		Direction:      models.DirectionOutbound,
		MessageContent: "hello",
	}))

	assert.NoError(t, testDB.DeleteLead(lead.ID))

	_, err := testDB.GetLead(lead.ID)
	assert.Error(t, err, "deleted lead should be gone")

	convs, err := testDB.GetConversations(lead.ID)
	assert.NoError(t, err)
	assert.Empty(t, convs, "conversations cascade with the lead")
}

func TestFollowUpQueue(t *testing.T) {
	lead := createTestLead(t, "followup@example.com")

	// Contacted two days ago with a follow-up already due.
	assert.NoError(t, testDB.TouchContact(lead.ID, models.StatusContacted, 0))
	_, err := testDB.DB.Exec(
		`UPDATE leads SET next_follow_up_date = now() - interval '1 hour' WHERE id = $1`, lead.ID)
	assert.NoError(t, err)

	due, err := testDB.GetLeadsForFollowUp(time.Now().UTC())
	assert.NoError(t, err)

	found := false
	for _, l := range due {
		if l.ID == lead.ID {
			found = true
		}
	}
	assert.True(t, found, "lead with a past follow-up date should be due")
}

func TestConversationsRoundTrip(t *testing.T) {
	lead := createTestLead(t, "convs@example.com")

	assert.NoError(t, testDB.AddConversation(&models.Conversation{
		LeadID:         lead.ID,
		Channel:        models.ChannelWhatsApp,
		Direction:      models.DirectionInbound,
		MessageContent: "sounds interesting",
	}))

	convs, err := testDB.GetConversations(lead.ID)
	assert.NoError(t, err)
	assert.Len(t, convs, 1)
	assert.False(t, convs[0].Read)

	assert.NoError(t, testDB.MarkConversationsRead(lead.ID))
	convs, err = testDB.GetConversations(lead.ID)
	assert.NoError(t, err)
	assert.True(t, convs[0].Read)
}

func TestMeetingsLifecycle(t *testing.T) {
	lead := createTestLead(t, "meetings@example.com")

	meeting := &models.Meeting{
		LeadID:          lead.ID,
		ScheduledTime:   time.Now().Add(48 * time.Hour).UTC(),
		DurationMinutes: 30,
		CalendarEventID: "evt-123",
	}
	assert.NoError(t, testDB.CreateMeeting(meeting))
	assert.Equal(t, models.MeetingProposed, meeting.Status)

	byEvent, err := testDB.GetMeetingByCalendarEvent("evt-123")
	assert.NoError(t, err)
	assert.Equal(t, meeting.ID, byEvent.ID)

	pending, err := testDB.GetLatestPendingMeeting(lead.ID)
	assert.NoError(t, err)
	assert.NotNil(t, pending)
	assert.Equal(t, meeting.ID, pending.ID)

	assert.NoError(t, testDB.UpdateMeetingStatus(meeting.ID, models.MeetingConfirmed, nil))

	pending, err = testDB.GetLatestPendingMeeting(lead.ID)
	assert.NoError(t, err)
	assert.Nil(t, pending, "confirmed meetings are no longer pending")

	meetings, err := testDB.GetMeetings(lead.ID)
	assert.NoError(t, err)
	assert.Len(t, meetings, 1)
	assert.Equal(t, models.MeetingConfirmed, meetings[0].Status)
}

func TestRepRosterAndAssignment(t *testing.T) {
	rep := &models.SalesRep{
		Name:         "Sam Ortiz",
		Email:        "sam@example.com",
		Priority:     3,
		LeadCapacity: 10,
		Active:       true,
	}
	assert.NoError(t, testDB.CreateRep(rep))

	lead := createTestLead(t, "assign@example.com")
	assert.NoError(t, testDB.AssignLead(lead.ID, rep.ID))

	got, err := testDB.GetRep(rep.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, got.AssignedCount)
	assert.NotNil(t, got.LastAssignedAt)

	assigned, err := testDB.GetLead(lead.ID)
	assert.NoError(t, err)
	assert.Equal(t, rep.ID, *assigned.AssignedTo)

	// Deleting the rep unassigns, not deletes, the lead.
	assert.NoError(t, testDB.DeleteRep(rep.ID))
	orphan, err := testDB.GetLead(lead.ID)
	assert.NoError(t, err)
	assert.Nil(t, orphan.AssignedTo)
}

func TestWorkerStateRoundTrip(t *testing.T) {
	value, err := testDB.GetWorkerState("summary_marker_test")
	assert.NoError(t, err)
	assert.Empty(t, value, "unwritten markers read as empty")

	assert.NoError(t, testDB.SetWorkerState("summary_marker_test", "2026-08-31"))
	assert.NoError(t, testDB.SetWorkerState("summary_marker_test", "2026-09-01"))

	value, err = testDB.GetWorkerState("summary_marker_test")
	assert.NoError(t, err)
	assert.Equal(t, "2026-09-01", value, "writes upsert the marker")
}

func TestStatsSummary(t *testing.T) {
	createTestLead(t, "stats@example.com")

	summary, err := testDB.GetStatsSummary(time.Now().UTC())
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, summary.TotalLeads, 1)
	assert.GreaterOrEqual(t, summary.NewToday, 1)
	assert.GreaterOrEqual(t, summary.ByStatus[models.StatusNew], 1)
}
