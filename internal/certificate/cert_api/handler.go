package cert_api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"campus-ticketing/internal/auth"
	"campus-ticketing/internal/certificate"
	"campus-ticketing/internal/logger"
)

type Handler struct {
	Certificates *certificate.Service
	Logger       *logger.Logger
}

// Download streams the participation certificate as a JPEG attachment.
// Status mapping: 403 for ownership and eligibility failures, 404 for a
// missing ticket or template, 500 only for an unexpected render failure
// (full detail stays in the server log).
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	ticketID, err := strconv.ParseInt(chi.URLParam(r, "ticketID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid ticket id", http.StatusBadRequest)
		return
	}

	cert, err := h.Certificates.Render(r.Context(), ticketID, auth.UserID(r.Context()))
	if err != nil {
		var notEligible *certificate.NotEligibleError
		switch {
		case errors.Is(err, certificate.ErrUnauthorized):
			http.Error(w, "Unauthorized", http.StatusForbidden)
		case errors.As(err, &notEligible):
			http.Error(w, notEligible.Reason, http.StatusForbidden)
		case errors.Is(err, certificate.ErrTicketNotFound):
			http.Error(w, "ticket not found", http.StatusNotFound)
		case errors.Is(err, certificate.ErrTemplateMissing):
			http.Error(w, "certificate template not available", http.StatusNotFound)
		default:
			h.Logger.Error("CERTIFICATE", fmt.Sprintf("certificate download failed for ticket %d: %v", ticketID, err))
			http.Error(w, "failed to generate certificate", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", cert.Filename))
	w.Write(cert.Data)
}
