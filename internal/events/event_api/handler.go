package event_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"campus-ticketing/internal/auth"
	events "campus-ticketing/internal/events/service"
	"campus-ticketing/internal/logger"
	"campus-ticketing/internal/models"
)

type Handler struct {
	EventService *events.EventService
	Logger       *logger.Logger
}

// List returns events ordered by date. ?search= matches title or location;
// ?admin=true includes completed events (the flag only works for admins,
// the public always sees upcoming events only).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	includeCompleted := r.URL.Query().Get("admin") == "true" &&
		auth.Role(r.Context()) == models.RoleAdmin

	list, err := h.EventService.List(r.Context(), search, includeCompleted)
	if err != nil {
		http.Error(w, "failed to list events: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []models.Event{}
	}

	writeJSON(w, http.StatusOK, list)
}

// Show resolves an event by numeric id or by slug; the path segment
// accepts either.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	event, err := h.EventService.Get(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	input, err := parseEventForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if input.Title == "" || input.Description == "" || input.Date == "" ||
		input.Time == "" || input.Location == "" || input.Organizer == "" {
		http.Error(w, "title, description, date, time, location and organizer are required", http.StatusBadRequest)
		return
	}

	event, err := h.EventService.Create(r.Context(), input)
	if err != nil {
		h.Logger.Error("EVENT", fmt.Sprintf("event creation failed: %v", err))
		http.Error(w, "failed to create event", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return
	}

	input, err := parseEventForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	event, err := h.EventService.Update(r.Context(), eventID, input)
	if err != nil {
		if errors.Is(err, events.ErrEventNotFound) {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		h.Logger.Error("EVENT", fmt.Sprintf("event update failed: %v", err))
		http.Error(w, "failed to update event", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return
	}

	if err := h.EventService.Delete(r.Context(), eventID); err != nil {
		if errors.Is(err, events.ErrEventNotFound) {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to delete event: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseEventForm accepts either a multipart form (with optional image and
// certificate_template uploads) or a plain JSON body.
func parseEventForm(r *http.Request) (events.EventInput, error) {
	var input events.EventInput

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			return input, fmt.Errorf("invalid form data: %w", err)
		}

		input.Title = r.FormValue("title")
		input.Description = r.FormValue("description")
		input.Date = r.FormValue("date")
		input.Time = r.FormValue("time")
		input.Location = r.FormValue("location")
		input.Organizer = r.FormValue("organizer")
		input.BankName = r.FormValue("bank_name")
		input.AccountNumber = r.FormValue("account_number")
		input.AccountHolder = r.FormValue("account_holder")

		if v := r.FormValue("price"); v != "" {
			price, err := strconv.Atoi(v)
			if err != nil || price < 0 {
				return input, errors.New("price must be a non-negative integer")
			}
			input.Price = &price
		}
		if v := r.FormValue("is_completed"); v != "" {
			completed, err := strconv.ParseBool(v)
			if err != nil {
				return input, errors.New("is_completed must be a boolean")
			}
			input.IsCompleted = &completed
		}

		if file, header, err := r.FormFile("certificate_template"); err == nil {
			input.CertTemplate = file
			input.CertTemplateFilename = header.Filename
		}
		if file, header, err := r.FormFile("image"); err == nil {
			input.Image = file
			input.ImageFilename = header.Filename
		}

		return input, nil
	}

	var body struct {
		Title         string `json:"title"`
		Description   string `json:"description"`
		Date          string `json:"date"`
		Time          string `json:"time"`
		Location      string `json:"location"`
		Organizer     string `json:"organizer"`
		Price         *int   `json:"price"`
		IsCompleted   *bool  `json:"is_completed"`
		BankName      string `json:"bank_name"`
		AccountNumber string `json:"account_number"`
		AccountHolder string `json:"account_holder"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
		return input, fmt.Errorf("invalid request body: %w", err)
	}

	if body.Price != nil && *body.Price < 0 {
		return input, errors.New("price must be a non-negative integer")
	}

	input.Title = body.Title
	input.Description = body.Description
	input.Date = body.Date
	input.Time = body.Time
	input.Location = body.Location
	input.Organizer = body.Organizer
	input.Price = body.Price
	input.IsCompleted = body.IsCompleted
	input.BankName = body.BankName
	input.AccountNumber = body.AccountNumber
	input.AccountHolder = body.AccountHolder

	return input, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
