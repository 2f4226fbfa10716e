package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mossdale/dropforge/internal/catalog"
	"github.com/mossdale/dropforge/internal/domain"
	"github.com/mossdale/dropforge/internal/logger"
)

// CatalogHandler groups the item definition endpoints
type CatalogHandler struct {
	service catalog.Service
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(service catalog.Service) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// AddItemRequest represents a new catalog definition
type AddItemRequest struct {
	Name         string          `json:"name" validate:"required,max=100"`
	Description  string          `json:"description" validate:"max=1000"`
	Thumbnail    string          `json:"thumbnail" validate:"required"`
	Rarity       domain.Rarity   `json:"rarity" validate:"required"`
	Kind         domain.ItemKind `json:"kind"`
	Available    bool            `json:"available"`
	PatternCount int32           `json:"pattern_count"`
}

// SetAvailabilityRequest flips the drop-pool flag on a definition
type SetAvailabilityRequest struct {
	Available bool `json:"available"`
}

// HandleListItems returns the full catalog
func (h *CatalogHandler) HandleListItems(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	items, err := h.service.ListItems(r.Context())
	if err != nil {
		log.Error("Failed to list items", "error", err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, items)
}

// HandleGetItem returns one definition by ID
func (h *CatalogHandler) HandleGetItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	itemID, err := strconv.Atoi(chi.URLParam(r, "itemID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgMissingURLParam, "itemID"))
		return
	}

	item, err := h.service.GetItem(r.Context(), itemID)
	if err != nil {
		log.Error("Failed to get item", "error", err, "item_id", itemID)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// HandleAddItem inserts a new definition
func (h *CatalogHandler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("Failed to decode add item request", "error", err)
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
		return
	}
	if err := GetValidator().ValidateStruct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, respondValidationError(err))
		return
	}

	itemID, err := h.service.AddItem(r.Context(), &domain.ItemDefinition{
		Name:         req.Name,
		Description:  req.Description,
		Thumbnail:    req.Thumbnail,
		Rarity:       req.Rarity,
		Kind:         req.Kind,
		Available:    req.Available,
		PatternCount: req.PatternCount,
	})
	if err != nil {
		log.Error("Failed to add item", "error", err, "name", req.Name)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]int{"item_id": itemID})
}

// HandleSetAvailability flips whether a definition participates in drops
func (h *CatalogHandler) HandleSetAvailability(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	itemID, err := strconv.Atoi(chi.URLParam(r, "itemID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgMissingURLParam, "itemID"))
		return
	}

	var req SetAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("Failed to decode availability request", "error", err)
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
		return
	}

	if err := h.service.SetAvailability(r.Context(), itemID, req.Available); err != nil {
		log.Error("Failed to set availability", "error", err, "item_id", itemID)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Message: "Availability updated"})
}
