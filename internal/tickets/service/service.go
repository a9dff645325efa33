package tickets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"campus-ticketing/internal/logger"
	"campus-ticketing/internal/models"
	"campus-ticketing/internal/utils"
)

var (
	ErrEventNotFound         = errors.New("event not found")
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrDuplicateRegistration = errors.New("already registered for this event")
	ErrInvalidStatus         = errors.New("invalid ticket status")
)

type TicketDBLayer interface {
	CreateTicket(ctx context.Context, ticket *models.Ticket) error
	GetTicketByID(ctx context.Context, id int64) (*models.Ticket, error)
	GetTicketByCode(ctx context.Context, code string) (*models.Ticket, error)
	TicketExists(ctx context.Context, userID, eventID int64) (bool, error)
	UpdateTicketStatus(ctx context.Context, id int64, status string) (*models.Ticket, error)
	MarkAttended(ctx context.Context, id int64) (bool, error)
	GetTicketsByUser(ctx context.Context, userID int64) ([]models.Ticket, error)
	GetTicketsByEvent(ctx context.Context, eventID int64) ([]models.Ticket, error)
}

type EventDBLayer interface {
	GetEventByID(ctx context.Context, id int64) (*models.Event, error)
}

type KafkaPublisher interface {
	PublishTicketRegistered(ticket models.Ticket) error
	PublishTicketStatusChanged(ticket models.Ticket) error
	PublishTicketAttended(ticket models.Ticket) error
}

// VerifyLock serializes concurrent scans of one ticket code.
type VerifyLock interface {
	Acquire(ctx context.Context, ticketCode string) (bool, error)
	Release(ctx context.Context, ticketCode string) error
}

type TicketService struct {
	DB      TicketDBLayer
	Events  EventDBLayer
	Kafka   KafkaPublisher
	Lock    VerifyLock
	Logger  *logger.Logger
}

func NewTicketService(db TicketDBLayer, events EventDBLayer, kafka KafkaPublisher, lock VerifyLock, log *logger.Logger) *TicketService {
	return &TicketService{DB: db, Events: events, Kafka: kafka, Lock: lock, Logger: log}
}

// Register creates a ticket for a user on an event. Free events confirm
// immediately; paid events wait for an admin to check the transfer.
// At most one ticket exists per (user, event): the existence check answers
// the common case and the unique index closes the race.
func (s *TicketService) Register(ctx context.Context, userID, eventID int64, paymentProof string) (*models.Ticket, error) {
	event, err := s.Events.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, ErrEventNotFound
	}

	exists, err := s.DB.TicketExists(ctx, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to check registration: %w", err)
	}
	if exists {
		return nil, ErrDuplicateRegistration
	}

	status := models.StatusPending
	if event.Free() {
		status = models.StatusConfirmed
	}

	ticket := &models.Ticket{
		UserID:       userID,
		EventID:      eventID,
		Status:       status,
		TicketCode:   utils.GenerateTicketCode(),
		PaymentProof: paymentProof,
	}

	if err := s.DB.CreateTicket(ctx, ticket); err != nil {
		if isUniqueViolation(err) {
			// Lost the race against a concurrent registration.
			return nil, ErrDuplicateRegistration
		}
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	s.Logger.LogTicket("REGISTER", ticket.TicketCode,
		fmt.Sprintf("user %d registered for event %d (%s)", userID, eventID, status))

	if s.Kafka != nil {
		if err := s.Kafka.PublishTicketRegistered(*ticket); err != nil {
			s.Logger.Warn("KAFKA", fmt.Sprintf("failed to publish registration event: %v", err))
		}
	}

	return ticket, nil
}

// SetStatus applies an admin confirm/reject decision. Any valid status may
// replace any other; the committee routinely reverses a rejection after a
// late transfer shows up.
func (s *TicketService) SetStatus(ctx context.Context, ticketID int64, status string) (*models.Ticket, error) {
	if !models.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	if _, err := s.DB.GetTicketByID(ctx, ticketID); err != nil {
		return nil, ErrTicketNotFound
	}

	ticket, err := s.DB.UpdateTicketStatus(ctx, ticketID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update ticket status: %w", err)
	}

	s.Logger.LogTicket("STATUS", ticket.TicketCode, "status set to "+status)

	if s.Kafka != nil {
		if err := s.Kafka.PublishTicketStatusChanged(*ticket); err != nil {
			s.Logger.Warn("KAFKA", fmt.Sprintf("failed to publish status event: %v", err))
		}
	}

	return ticket, nil
}

// Verify resolves a scanned or typed ticket code against the event being
// scanned and records attendance. Safe to call repeatedly: attendance is
// set at most once, and a re-scan reports already_attended instead of
// failing. Of N concurrent scans of one code exactly one sees success.
func (s *TicketService) Verify(ctx context.Context, ticketCode string, eventID int64) (*models.VerificationResult, error) {
	if s.Lock != nil {
		if ok, err := s.Lock.Acquire(ctx, ticketCode); err == nil && ok {
			defer s.Lock.Release(ctx, ticketCode)
		}
		// Lock failures fall through: the MarkAttended CAS is authoritative.
	}

	ticket, err := s.DB.GetTicketByCode(ctx, ticketCode)
	if err != nil {
		return &models.VerificationResult{
			Status:  models.VerifyInvalid,
			Message: "ticket not found",
		}, nil
	}

	if ticket.EventID != eventID {
		return &models.VerificationResult{
			Status:  models.VerifyInvalid,
			Message: "ticket belongs to a different event",
		}, nil
	}

	flipped, err := s.DB.MarkAttended(ctx, ticket.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to record attendance: %w", err)
	}

	if !flipped {
		return &models.VerificationResult{
			Status:  models.VerifyAlreadyAttended,
			Message: "ticket already checked in",
			User:    ticket.User,
			Ticket:  ticket,
		}, nil
	}

	ticket.IsAttended = true
	s.Logger.LogTicket("VERIFY", ticket.TicketCode,
		fmt.Sprintf("attendance recorded for event %d", eventID))

	if s.Kafka != nil {
		if err := s.Kafka.PublishTicketAttended(*ticket); err != nil {
			s.Logger.Warn("KAFKA", fmt.Sprintf("failed to publish attendance event: %v", err))
		}
	}

	return &models.VerificationResult{
		Status:  models.VerifySuccess,
		Message: "check-in successful",
		User:    ticket.User,
		Ticket:  ticket,
	}, nil
}

func (s *TicketService) GetTicket(ctx context.Context, ticketID int64) (*models.Ticket, error) {
	ticket, err := s.DB.GetTicketByID(ctx, ticketID)
	if err != nil {
		return nil, ErrTicketNotFound
	}
	return ticket, nil
}

func (s *TicketService) GetTicketsByUser(ctx context.Context, userID int64) ([]models.Ticket, error) {
	tickets, err := s.DB.GetTicketsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets for user %d: %w", userID, err)
	}
	return tickets, nil
}

func (s *TicketService) GetTicketsByEvent(ctx context.Context, eventID int64) ([]models.Ticket, error) {
	if _, err := s.Events.GetEventByID(ctx, eventID); err != nil {
		return nil, ErrEventNotFound
	}
	tickets, err := s.DB.GetTicketsByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets for event %d: %w", eventID, err)
	}
	return tickets, nil
}

// isUniqueViolation matches unique-constraint errors from both the
// Postgres driver (code 23505) and SQLite used in tests.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
