package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/safar/sweet-shop/internal/auth"
	"github.com/safar/sweet-shop/internal/database"
	"github.com/safar/sweet-shop/internal/models"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (s *Server) registerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Email == "" || req.Password == "" {
			s.respondError(w, http.StatusBadRequest, "Email and password are required")
			return
		}

		hash, err := auth.HashPassword(req.Password, s.cfg.Auth.BcryptCost)
		if err != nil {
			s.logger.Error("Failed to hash password", slog.Any("error", err))
			s.respondError(w, http.StatusInternalServerError, "Registration failed")
			return
		}

		user, err := s.store.CreateUser(r.Context(), req.Email, hash, models.RoleUser)
		if err != nil {
			if errors.Is(err, database.ErrEmailTaken) {
				s.respondError(w, http.StatusConflict, "Email already registered")
				return
			}
			s.logger.Error("Failed to create user", slog.Any("error", err))
			s.respondError(w, http.StatusInternalServerError, "Registration failed")
			return
		}

		token, err := auth.NewToken(user, s.cfg.Auth.JWTSecret, s.cfg.Auth.TokenTTL)
		if err != nil {
			s.logger.Error("Failed to sign token", slog.Any("error", err))
			s.respondError(w, http.StatusInternalServerError, "Registration failed")
			return
		}

		s.logger.Info("Registered user", slog.String("email", user.Email))
		s.respondJSON(w, http.StatusCreated, tokenResponse{Token: token})
	}
}

func (s *Server) loginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		user, err := s.store.GetUserByEmail(r.Context(), req.Email)
		if err != nil {
			if errors.Is(err, database.ErrUserNotFound) {
				s.respondError(w, http.StatusUnauthorized, "Invalid credentials")
				return
			}
			s.logger.Error("Failed to look up user", slog.Any("error", err))
			s.respondError(w, http.StatusInternalServerError, "Login failed")
			return
		}

		if !auth.CheckPassword(user.PasswordHash, req.Password) {
			s.respondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		token, err := auth.NewToken(user, s.cfg.Auth.JWTSecret, s.cfg.Auth.TokenTTL)
		if err != nil {
			s.logger.Error("Failed to sign token", slog.Any("error", err))
			s.respondError(w, http.StatusInternalServerError, "Login failed")
			return
		}

		s.respondJSON(w, http.StatusOK, tokenResponse{Token: token})
	}
}
