package db_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"campus-ticketing/internal/models"
	"campus-ticketing/internal/tickets/db"
	"campus-ticketing/internal/utils"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	for _, model := range []interface{}{
		(*models.User)(nil),
		(*models.Event)(nil),
		(*models.Ticket)(nil),
	} {
		_, err = bunDB.NewCreateTable().Model(model).Exec(ctx)
		if err != nil {
			t.Fatalf("Failed to create table: %v", err)
		}
	}

	_, err = bunDB.NewCreateIndex().
		Model((*models.Ticket)(nil)).
		Index("idx_tickets_user_event").
		Unique().
		Column("user_id", "event_id").
		Exec(ctx)
	if err != nil {
		t.Fatalf("Failed to create unique index: %v", err)
	}

	return &db.DB{Bun: bunDB}, bunDB
}

func insertFixtures(t *testing.T, bunDB *bun.DB) (*models.User, *models.Event) {
	ctx := context.Background()

	user := &models.User{Name: "Budi Santoso", Email: "budi@example.com", Password: "x", Role: models.RoleUser}
	_, err := bunDB.NewInsert().Model(user).Exec(ctx)
	require.NoError(t, err)

	event := &models.Event{
		Title:       "Seminar Teknologi",
		Slug:        utils.DeriveSlug("Seminar Teknologi"),
		Description: "desc",
		Date:        "2026-09-01",
		Time:        "09:00:00",
		Location:    "Auditorium",
		Organizer:   "HMIF",
		Price:       0,
	}
	_, err = bunDB.NewInsert().Model(event).Exec(ctx)
	require.NoError(t, err)

	return user, event
}

func TestCreateAndGetTicketByCode(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	user, event := insertFixtures(t, bunDB)

	ctx := context.Background()
	ticket := &models.Ticket{
		UserID:     user.ID,
		EventID:    event.ID,
		Status:     models.StatusConfirmed,
		TicketCode: utils.GenerateTicketCode(),
	}
	require.NoError(t, ticketDB.CreateTicket(ctx, ticket))
	assert.NotZero(t, ticket.ID)

	found, err := ticketDB.GetTicketByCode(ctx, ticket.TicketCode)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, found.ID)
	assert.Equal(t, user.ID, found.UserID)
	require.NotNil(t, found.Event)
	assert.Equal(t, event.Title, found.Event.Title)
	require.NotNil(t, found.User)
	assert.Equal(t, user.Name, found.User.Name)

	_, err = ticketDB.GetTicketByCode(ctx, "TCKT-DOESNOTEXIST")
	assert.Error(t, err)
}

func TestDuplicateRegistrationRejectedByIndex(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	user, event := insertFixtures(t, bunDB)

	ctx := context.Background()
	first := &models.Ticket{
		UserID:     user.ID,
		EventID:    event.ID,
		Status:     models.StatusPending,
		TicketCode: utils.GenerateTicketCode(),
	}
	require.NoError(t, ticketDB.CreateTicket(ctx, first))

	second := &models.Ticket{
		UserID:     user.ID,
		EventID:    event.ID,
		Status:     models.StatusPending,
		TicketCode: utils.GenerateTicketCode(),
	}
	err := ticketDB.CreateTicket(ctx, second)
	assert.Error(t, err, "unique index must reject the second registration")

	exists, err := ticketDB.TicketExists(ctx, user.ID, event.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMarkAttended_CompareAndSwap(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	user, event := insertFixtures(t, bunDB)

	ctx := context.Background()
	ticket := &models.Ticket{
		UserID:     user.ID,
		EventID:    event.ID,
		Status:     models.StatusConfirmed,
		TicketCode: utils.GenerateTicketCode(),
	}
	require.NoError(t, ticketDB.CreateTicket(ctx, ticket))

	// First flip observes the transition.
	flipped, err := ticketDB.MarkAttended(ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, flipped)

	// Every later flip is a no-op.
	flipped, err = ticketDB.MarkAttended(ctx, ticket.ID)
	require.NoError(t, err)
	assert.False(t, flipped)

	found, err := ticketDB.GetTicketByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, found.IsAttended)
}

func TestUpdateTicketStatus(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	user, event := insertFixtures(t, bunDB)

	ctx := context.Background()
	ticket := &models.Ticket{
		UserID:     user.ID,
		EventID:    event.ID,
		Status:     models.StatusPending,
		TicketCode: utils.GenerateTicketCode(),
	}
	require.NoError(t, ticketDB.CreateTicket(ctx, ticket))

	updated, err := ticketDB.UpdateTicketStatus(ctx, ticket.ID, models.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, updated.Status)
}

func TestGetTicketsByUserAndEvent(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()
	user, event := insertFixtures(t, bunDB)

	ctx := context.Background()
	ticket := &models.Ticket{
		UserID:     user.ID,
		EventID:    event.ID,
		Status:     models.StatusConfirmed,
		TicketCode: utils.GenerateTicketCode(),
	}
	require.NoError(t, ticketDB.CreateTicket(ctx, ticket))

	byUser, err := ticketDB.GetTicketsByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	require.NotNil(t, byUser[0].Event)
	assert.Equal(t, event.Title, byUser[0].Event.Title)

	byEvent, err := ticketDB.GetTicketsByEvent(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, byEvent, 1)
	require.NotNil(t, byEvent[0].User)
	assert.Equal(t, user.Name, byEvent[0].User.Name)
}
