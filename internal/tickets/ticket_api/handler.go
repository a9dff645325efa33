package ticket_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"campus-ticketing/internal/auth"
	"campus-ticketing/internal/logger"
	"campus-ticketing/internal/models"
	"campus-ticketing/internal/storage"
	"campus-ticketing/internal/tickets/qr"
	tickets "campus-ticketing/internal/tickets/service"
	"campus-ticketing/internal/tickets/template"
	"campus-ticketing/internal/utils"
)

type Handler struct {
	TicketService *tickets.TicketService
	Store         storage.FileStore
	QRGenerator   *qr.Generator
	PDFGenerator  *template.TicketPDFGenerator
	PublicURL     string
	Logger        *logger.Logger
}

// Register creates a ticket for the authenticated user. Paid events take a
// payment proof as a multipart upload (field payment_proof) or as a URL in
// a JSON body.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var eventID int64
	var paymentProof string

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			http.Error(w, "invalid form data: "+err.Error(), http.StatusBadRequest)
			return
		}

		id, err := strconv.ParseInt(r.FormValue("event_id"), 10, 64)
		if err != nil {
			http.Error(w, "event_id is required", http.StatusBadRequest)
			return
		}
		eventID = id

		if file, header, err := r.FormFile("payment_proof"); err == nil {
			defer file.Close()
			ref, err := h.Store.Put(r.Context(), "payments", header.Filename, file)
			if err != nil {
				h.Logger.Error("TICKET", fmt.Sprintf("payment proof upload failed: %v", err))
				http.Error(w, "failed to store payment proof", http.StatusInternalServerError)
				return
			}
			paymentProof = h.PublicURL + "/" + ref
		}
	} else {
		var body struct {
			EventID      int64  `json:"event_id"`
			PaymentProof string `json:"payment_proof"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		eventID = body.EventID
		paymentProof = body.PaymentProof
	}

	ticket, err := h.TicketService.Register(r.Context(), userID, eventID, paymentProof)
	if err != nil {
		switch {
		case errors.Is(err, tickets.ErrDuplicateRegistration):
			writeJSON(w, http.StatusConflict, utils.ErrorResponse("Already registered", err.Error()))
		case errors.Is(err, tickets.ErrEventNotFound):
			writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Event not found", err.Error()))
		default:
			h.Logger.Error("TICKET", fmt.Sprintf("registration failed: %v", err))
			writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Registration failed", "internal error"))
		}
		return
	}

	writeJSON(w, http.StatusCreated, utils.SuccessResponse("Ticket registered", ticket))
}

// MyTickets lists the authenticated user's tickets with events preloaded.
func (h *Handler) MyTickets(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	list, err := h.TicketService.GetTicketsByUser(r.Context(), userID)
	if err != nil {
		http.Error(w, "failed to fetch tickets: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []models.Ticket{}
	}

	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) ViewTicket(w http.ResponseWriter, r *http.Request) {
	ticket, ok := h.ownedTicket(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

// EventTickets lists every registration on one event, for the admin
// dashboard.
func (h *Handler) EventTickets(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return
	}

	list, err := h.TicketService.GetTicketsByEvent(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, tickets.ErrEventNotFound) {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to fetch tickets: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []models.Ticket{}
	}

	writeJSON(w, http.StatusOK, list)
}

// UpdateStatus applies an admin confirm/reject decision.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ticketID, err := strconv.ParseInt(chi.URLParam(r, "ticketID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid ticket id", http.StatusBadRequest)
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	ticket, err := h.TicketService.SetStatus(r.Context(), ticketID, body.Status)
	if err != nil {
		switch {
		case errors.Is(err, tickets.ErrInvalidStatus):
			http.Error(w, "invalid status: "+body.Status, http.StatusBadRequest)
		case errors.Is(err, tickets.ErrTicketNotFound):
			http.Error(w, "ticket not found", http.StatusNotFound)
		default:
			http.Error(w, "failed to update status: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("Ticket status updated", ticket))
}

// Verify resolves a scanned or typed ticket code during check-in. The
// business outcome (success, already_attended, invalid) always answers
// 200; only a storage failure is a transport error.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TicketCode string `json:"ticket_code"`
		EventID    int64  `json:"event_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if body.TicketCode == "" {
		http.Error(w, "ticket_code is required", http.StatusBadRequest)
		return
	}

	result, err := h.TicketService.Verify(r.Context(), body.TicketCode, body.EventID)
	if err != nil {
		h.Logger.Error("TICKET", fmt.Sprintf("verification failed: %v", err))
		http.Error(w, "verification failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// TicketQR streams the PNG QR image for a ticket the caller owns.
func (h *Handler) TicketQR(w http.ResponseWriter, r *http.Request) {
	ticket, ok := h.ownedTicket(w, r)
	if !ok {
		return
	}

	png, err := h.QRGenerator.Generate(ticket.TicketCode)
	if err != nil {
		http.Error(w, "failed to generate QR: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// TicketPDF streams a printable ticket document.
func (h *Handler) TicketPDF(w http.ResponseWriter, r *http.Request) {
	ticket, ok := h.ownedTicket(w, r)
	if !ok {
		return
	}

	qrPNG, err := h.QRGenerator.Generate(ticket.TicketCode)
	if err != nil {
		http.Error(w, "failed to generate QR: "+err.Error(), http.StatusInternalServerError)
		return
	}

	pdf, err := h.PDFGenerator.Generate(*ticket, qrPNG)
	if err != nil {
		h.Logger.Error("TICKET", fmt.Sprintf("PDF generation failed: %v", err))
		http.Error(w, "failed to generate ticket PDF", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "Tiket-"+ticket.TicketCode+".pdf"))
	w.Write(pdf)
}

// ownedTicket loads the ticket from the URL and enforces that the caller
// owns it or is an admin.
func (h *Handler) ownedTicket(w http.ResponseWriter, r *http.Request) (*models.Ticket, bool) {
	ticketID, err := strconv.ParseInt(chi.URLParam(r, "ticketID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid ticket id", http.StatusBadRequest)
		return nil, false
	}

	ticket, err := h.TicketService.GetTicket(r.Context(), ticketID)
	if err != nil {
		http.Error(w, "ticket not found", http.StatusNotFound)
		return nil, false
	}

	if ticket.UserID != auth.UserID(r.Context()) && auth.Role(r.Context()) != models.RoleAdmin {
		http.Error(w, "forbidden", http.StatusForbidden)
		return nil, false
	}

	return ticket, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
