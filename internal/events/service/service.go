package events

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"campus-ticketing/internal/logger"
	"campus-ticketing/internal/models"
	"campus-ticketing/internal/storage"
	"campus-ticketing/internal/utils"
)

var ErrEventNotFound = errors.New("event not found")

type EventDBLayer interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEventByID(ctx context.Context, id int64) (*models.Event, error)
	GetEventBySlug(ctx context.Context, slug string) (*models.Event, error)
	ListEvents(ctx context.Context, search string, includeCompleted bool) ([]models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id int64) error
}

type EventService struct {
	DB     EventDBLayer
	Store  storage.FileStore
	Logger *logger.Logger
}

func NewEventService(db EventDBLayer, store storage.FileStore, log *logger.Logger) *EventService {
	return &EventService{DB: db, Store: store, Logger: log}
}

// EventInput carries the writable event fields. Upload streams are
// optional; an absent stream leaves the stored file untouched.
type EventInput struct {
	Title         string
	Description   string
	Date          string
	Time          string
	Location      string
	Organizer     string
	Price         *int
	IsCompleted   *bool
	BankName      string
	AccountNumber string
	AccountHolder string

	Image                io.Reader
	ImageFilename        string
	CertTemplate         io.Reader
	CertTemplateFilename string
}

func (s *EventService) Create(ctx context.Context, input EventInput) (*models.Event, error) {
	event := &models.Event{
		Title:         input.Title,
		Slug:          utils.DeriveSlug(input.Title),
		Description:   input.Description,
		Date:          input.Date,
		Time:          input.Time,
		Location:      input.Location,
		Organizer:     input.Organizer,
		BankName:      input.BankName,
		AccountNumber: input.AccountNumber,
		AccountHolder: input.AccountHolder,
	}
	if input.Price != nil {
		event.Price = *input.Price
	}
	if input.IsCompleted != nil {
		event.IsCompleted = *input.IsCompleted
	}

	if input.CertTemplate != nil {
		ref, err := s.Store.Put(ctx, "certificates/templates", input.CertTemplateFilename, input.CertTemplate)
		if err != nil {
			return nil, fmt.Errorf("failed to store certificate template: %w", err)
		}
		event.CertificateTemplate = ref
	}

	if input.Image != nil {
		ref, err := s.Store.Put(ctx, "events", input.ImageFilename, input.Image)
		if err != nil {
			return nil, fmt.Errorf("failed to store event image: %w", err)
		}
		event.ImageURL = ref
	}

	if err := s.DB.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.Logger.Info("EVENT", fmt.Sprintf("created event %d (%s)", event.ID, event.Slug))
	return event, nil
}

func (s *EventService) Update(ctx context.Context, id int64, input EventInput) (*models.Event, error) {
	event, err := s.DB.GetEventByID(ctx, id)
	if err != nil {
		return nil, ErrEventNotFound
	}

	if input.Title != "" && input.Title != event.Title {
		event.Title = input.Title
		// The slug follows the title; stale links keep working by id.
		event.Slug = utils.DeriveSlug(input.Title)
	}
	if input.Description != "" {
		event.Description = input.Description
	}
	if input.Date != "" {
		event.Date = input.Date
	}
	if input.Time != "" {
		event.Time = input.Time
	}
	if input.Location != "" {
		event.Location = input.Location
	}
	if input.Organizer != "" {
		event.Organizer = input.Organizer
	}
	if input.Price != nil {
		event.Price = *input.Price
	}
	if input.IsCompleted != nil {
		event.IsCompleted = *input.IsCompleted
	}
	if input.BankName != "" {
		event.BankName = input.BankName
	}
	if input.AccountNumber != "" {
		event.AccountNumber = input.AccountNumber
	}
	if input.AccountHolder != "" {
		event.AccountHolder = input.AccountHolder
	}

	if input.CertTemplate != nil {
		if event.CertificateTemplate != "" {
			if err := s.Store.Delete(ctx, event.CertificateTemplate); err != nil {
				s.Logger.Warn("EVENT", fmt.Sprintf("failed to delete old template: %v", err))
			}
		}
		ref, err := s.Store.Put(ctx, "certificates/templates", input.CertTemplateFilename, input.CertTemplate)
		if err != nil {
			return nil, fmt.Errorf("failed to store certificate template: %w", err)
		}
		event.CertificateTemplate = ref
	}

	if input.Image != nil {
		if event.ImageURL != "" {
			if err := s.Store.Delete(ctx, event.ImageURL); err != nil {
				s.Logger.Warn("EVENT", fmt.Sprintf("failed to delete old image: %v", err))
			}
		}
		ref, err := s.Store.Put(ctx, "events", input.ImageFilename, input.Image)
		if err != nil {
			return nil, fmt.Errorf("failed to store event image: %w", err)
		}
		event.ImageURL = ref
	}

	if err := s.DB.UpdateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return event, nil
}

func (s *EventService) Delete(ctx context.Context, id int64) error {
	if _, err := s.DB.GetEventByID(ctx, id); err != nil {
		return ErrEventNotFound
	}
	if err := s.DB.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

func (s *EventService) List(ctx context.Context, search string, includeCompleted bool) ([]models.Event, error) {
	events, err := s.DB.ListEvents(ctx, search, includeCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// Get resolves an event by numeric id or by slug.
func (s *EventService) Get(ctx context.Context, idOrSlug string) (*models.Event, error) {
	if id, err := strconv.ParseInt(idOrSlug, 10, 64); err == nil {
		event, err := s.DB.GetEventByID(ctx, id)
		if err != nil {
			return nil, ErrEventNotFound
		}
		return event, nil
	}
	event, err := s.DB.GetEventBySlug(ctx, idOrSlug)
	if err != nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}
