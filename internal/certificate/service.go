package certificate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campus-ticketing/internal/logger"
	"campus-ticketing/internal/models"
	"campus-ticketing/internal/storage"
)

var (
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrUnauthorized    = errors.New("ticket belongs to another user")
	ErrTemplateMissing = errors.New("certificate template not available")
	ErrRenderFailure   = errors.New("failed to render certificate")
)

// NotEligibleError carries the business reason a certificate cannot be
// issued yet: the holder has not attended, or the event is still running.
type NotEligibleError struct {
	Reason string
}

func (e *NotEligibleError) Error() string {
	return "not eligible for certificate: " + e.Reason
}

type TicketDBLayer interface {
	GetTicketByID(ctx context.Context, id int64) (*models.Ticket, error)
}

type Service struct {
	Tickets     TicketDBLayer
	Store       storage.FileStore
	Renderer    Renderer
	Logger      *logger.Logger
	LoadTimeout time.Duration
}

func NewService(tickets TicketDBLayer, store storage.FileStore, renderer Renderer, log *logger.Logger, loadTimeout time.Duration) *Service {
	if loadTimeout <= 0 {
		loadTimeout = 5 * time.Second
	}
	return &Service{Tickets: tickets, Store: store, Renderer: renderer, Logger: log, LoadTimeout: loadTimeout}
}

// RenderedCertificate is the downloadable artifact: JPEG bytes plus the
// attachment filename derived from the event title.
type RenderedCertificate struct {
	Filename string
	Data     []byte
}

// Render produces the participation certificate for a ticket, gated on
// ownership and eligibility. Preconditions are checked in a fixed order so
// each failure mode is distinct to the caller.
func (s *Service) Render(ctx context.Context, ticketID, requestingUserID int64) (*RenderedCertificate, error) {
	ticket, err := s.Tickets.GetTicketByID(ctx, ticketID)
	if err != nil {
		return nil, ErrTicketNotFound
	}

	if ticket.UserID != requestingUserID {
		return nil, ErrUnauthorized
	}

	if !ticket.IsAttended {
		return nil, &NotEligibleError{Reason: "has not attended"}
	}

	event := ticket.Event
	if event == nil || !event.IsCompleted {
		return nil, &NotEligibleError{Reason: "event not finished"}
	}

	if event.CertificateTemplate == "" {
		return nil, ErrTemplateMissing
	}

	loadCtx, cancel := context.WithTimeout(ctx, s.LoadTimeout)
	defer cancel()

	template, err := s.Store.Get(loadCtx, event.CertificateTemplate)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTemplateMissing
		}
		// Store unreachable: fail closed, never partial output.
		s.Logger.Error("CERTIFICATE", fmt.Sprintf("template load failed for event %d: %v", event.ID, err))
		return nil, ErrTemplateMissing
	}

	name := ""
	if ticket.User != nil {
		name = ticket.User.Name
	}

	data, err := s.Renderer.Render(ctx, template, name)
	if err != nil {
		s.Logger.Error("CERTIFICATE", fmt.Sprintf("render failed for ticket %d: %v", ticket.ID, err))
		return nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}

	s.Logger.LogTicket("CERTIFICATE", ticket.TicketCode, "certificate rendered")

	return &RenderedCertificate{
		Filename: Filename(event.Title),
		Data:     data,
	}, nil
}

// Filename derives the attachment name from the event title, spaces
// replaced with hyphens. The user's name never appears in the filename.
func Filename(eventTitle string) string {
	return "Sertifikat-" + strings.ReplaceAll(eventTitle, " ", "-") + ".jpg"
}
