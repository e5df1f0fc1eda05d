package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/safar/sweet-shop/internal/database"
	"github.com/safar/sweet-shop/internal/store"
)

type sweetRequest struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

func (req *sweetRequest) validate() (store.SweetParams, error) {
	if req.Name == "" || req.Category == "" {
		return store.SweetParams{}, errors.New("name and category are required")
	}
	if req.Price < 0 {
		return store.SweetParams{}, errors.New("price must not be negative")
	}
	if req.Quantity < 0 {
		return store.SweetParams{}, errors.New("quantity must not be negative")
	}

	return store.SweetParams{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Price:       decimal.NewFromFloat(req.Price),
		Quantity:    req.Quantity,
	}, nil
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func (s *Server) createSweetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sweetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		params, err := req.validate()
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		sweet, err := s.store.CreateSweet(r.Context(), params)
		if err != nil {
			s.logger.Error("Failed to create sweet", slog.Any("error", err))
			s.respondError(w, http.StatusInternalServerError, "Failed to create sweet")
			return
		}

		s.respondJSON(w, http.StatusCreated, sweet)
	}
}

func (s *Server) listSweetsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sweets, err := s.store.ListSweets(r.Context())
		if err != nil {
			s.logger.Error("Failed to list sweets", slog.Any("error", err))
			s.respondError(w, http.StatusInternalServerError, "Failed to fetch sweets")
			return
		}

		s.respondJSON(w, http.StatusOK, sweets)
	}
}

func (s *Server) searchSweetsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sweets, err := s.store.SearchSweets(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			s.logger.Error("Failed to search sweets", slog.Any("error", err))
			s.respondError(w, http.StatusInternalServerError, "Failed to search sweets")
			return
		}

		s.respondJSON(w, http.StatusOK, sweets)
	}
}

func (s *Server) updateSweetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sweetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		params, err := req.validate()
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		sweet, err := s.store.UpdateSweet(r.Context(), pathID(r), params)
		if err != nil {
			if errors.Is(err, database.ErrSweetNotFound) {
				s.respondError(w, http.StatusNotFound, "Sweet not found")
				return
			}
			s.logger.Error("Failed to update sweet", slog.Any("error", err))
			s.respondError(w, http.StatusInternalServerError, "Failed to update sweet")
			return
		}

		s.respondJSON(w, http.StatusOK, sweet)
	}
}

func (s *Server) deleteSweetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.store.DeleteSweet(r.Context(), pathID(r)); err != nil {
			if errors.Is(err, database.ErrSweetNotFound) {
				s.respondError(w, http.StatusNotFound, "Sweet not found")
				return
			}
			s.logger.Error("Failed to delete sweet", slog.Any("error", err))
			s.respondError(w, http.StatusInternalServerError, "Failed to delete sweet")
			return
		}

		s.respondMessage(w, http.StatusOK, "Sweet deleted")
	}
}
