package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/safar/sweet-shop/internal/database"
	"github.com/safar/sweet-shop/internal/models"
)

func (s *Server) purchaseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sweet, err := s.store.Purchase(r.Context(), pathID(r))
		if err != nil {
			switch {
			case errors.Is(err, database.ErrSweetNotFound):
				s.respondError(w, http.StatusNotFound, "Sweet not found")
			case errors.Is(err, database.ErrOutOfStock):
				s.respondError(w, http.StatusBadRequest, "Out of stock")
			default:
				s.logger.Error("Failed to purchase sweet", slog.Any("error", err))
				s.respondError(w, http.StatusInternalServerError, "Failed to purchase sweet")
			}
			return
		}

		if s.metrics != nil {
			s.metrics.PurchasesTotal.Add(r.Context(), 1)
			s.metrics.RevenueTotal.Add(r.Context(), sweet.Price.InexactFloat64())
		}

		s.respondJSON(w, http.StatusOK, sweet)
	}
}

func (s *Server) restockHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Quantity int `json:"quantity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		sweet, err := s.store.Restock(r.Context(), pathID(r), req.Quantity)
		if err != nil {
			switch {
			case errors.Is(err, database.ErrInvalidQuantity):
				s.respondError(w, http.StatusBadRequest, "Restock quantity must be a positive integer")
			case errors.Is(err, database.ErrSweetNotFound):
				s.respondError(w, http.StatusNotFound, "Sweet not found")
			default:
				s.logger.Error("Failed to restock sweet", slog.Any("error", err))
				s.respondError(w, http.StatusInternalServerError, "Failed to restock sweet")
			}
			return
		}

		s.respondJSON(w, http.StatusOK, sweet)
	}
}

func (s *Server) checkoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Items []models.CheckoutLine `json:"items"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := s.store.Checkout(r.Context(), req.Items); err != nil {
			var notFound *database.SweetNotFoundError
			var insufficient *database.InsufficientStockError

			switch {
			case errors.Is(err, database.ErrEmptyCart):
				s.respondError(w, http.StatusBadRequest, "Cart is empty")
			case errors.Is(err, database.ErrInvalidQuantity):
				s.respondError(w, http.StatusBadRequest, "Item quantities must be positive integers")
			case errors.As(err, &notFound):
				s.respondError(w, http.StatusBadRequest, notFound.Error())
			case errors.As(err, &insufficient):
				s.respondError(w, http.StatusBadRequest, insufficient.Error())
			default:
				s.logger.Error("Checkout failed", slog.Any("error", err))
				s.respondError(w, http.StatusInternalServerError, "Checkout failed")
			}
			return
		}

		if s.metrics != nil {
			s.metrics.CheckoutsTotal.Add(r.Context(), 1)
		}

		s.respondMessage(w, http.StatusOK, "Purchase successful")
	}
}
