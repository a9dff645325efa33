package user_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"campus-ticketing/internal/auth"
	"campus-ticketing/internal/logger"
	users "campus-ticketing/internal/users/service"
	"campus-ticketing/internal/utils"
)

type Handler struct {
	UserService *users.UserService
	TokenIssuer *auth.TokenIssuer
	Logger      *logger.Logger
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Nim      string `json:"nim"`
		Phone    string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if body.Name == "" || body.Email == "" || len(body.Password) < 8 {
		http.Error(w, "name, email and a password of at least 8 characters are required", http.StatusBadRequest)
		return
	}

	user, err := h.UserService.Register(r.Context(), body.Name, body.Email, body.Password, body.Nim, body.Phone)
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			writeJSON(w, http.StatusConflict, utils.ErrorResponse("Email already registered", err.Error()))
			return
		}
		h.Logger.Error("AUTH", fmt.Sprintf("user registration failed: %v", err))
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}

	token, err := h.TokenIssuer.Issue(user)
	if err != nil {
		h.Logger.Error("AUTH", fmt.Sprintf("token issue failed: %v", err))
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, utils.SuccessResponse("Registration successful", map[string]interface{}{
		"user":  user,
		"token": token,
	}))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.UserService.Authenticate(r.Context(), body.Email, body.Password)
	if err != nil {
		http.Error(w, "invalid email or password", http.StatusUnauthorized)
		return
	}

	token, err := h.TokenIssuer.Issue(user)
	if err != nil {
		h.Logger.Error("AUTH", fmt.Sprintf("token issue failed: %v", err))
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("Login successful", map[string]interface{}{
		"user":  user,
		"token": token,
	}))
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.GetUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
