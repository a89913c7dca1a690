package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/galaxytools/craft-tracker/internal/models"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type inventoryRequest struct {
	ItemName        string `json:"item_name" validate:"required,max=255"`
	ResourceClassID string `json:"resource_class_id" validate:"max=64"`
	Count           int    `json:"count" validate:"gte=0"`
	Notes           string `json:"notes"`
}

func (a *API) HandleInventoryList(w http.ResponseWriter, r *http.Request) {
	query := a.db.WithContext(r.Context()).Order("item_name asc")
	if q := r.URL.Query().Get("q"); q != "" {
		query = query.Where("item_name ILIKE ?", "%"+q+"%")
	}

	var items []models.InventoryItem
	if err := query.Find(&items).Error; err != nil {
		a.log.WithError(err).Error("Inventory query failed")
		writeError(w, http.StatusInternalServerError, "Failed to load inventory")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (a *API) HandleInventoryCreate(w http.ResponseWriter, r *http.Request) {
	var req inventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item := models.InventoryItem{
		ItemName:        req.ItemName,
		ResourceClassID: req.ResourceClassID,
		Count:           req.Count,
		Notes:           req.Notes,
	}
	if err := a.db.WithContext(r.Context()).Create(&item).Error; err != nil {
		a.log.WithError(err).Error("Inventory create failed")
		writeError(w, http.StatusInternalServerError, "Failed to create inventory item")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (a *API) HandleInventoryGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var item models.InventoryItem
	err := a.db.WithContext(r.Context()).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "Inventory item not found")
		return
	}
	if err != nil {
		a.log.WithError(err).Error("Inventory lookup failed")
		writeError(w, http.StatusInternalServerError, "Failed to load inventory item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (a *API) HandleInventoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req inventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var item models.InventoryItem
	err := a.db.WithContext(r.Context()).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "Inventory item not found")
		return
	}
	if err != nil {
		a.log.WithError(err).Error("Inventory lookup failed")
		writeError(w, http.StatusInternalServerError, "Failed to load inventory item")
		return
	}

	item.ItemName = req.ItemName
	item.ResourceClassID = req.ResourceClassID
	item.Count = req.Count
	item.Notes = req.Notes
	if err := a.db.WithContext(r.Context()).Save(&item).Error; err != nil {
		a.log.WithError(err).Error("Inventory update failed")
		writeError(w, http.StatusInternalServerError, "Failed to update inventory item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (a *API) HandleInventoryDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	result := a.db.WithContext(r.Context()).Delete(&models.InventoryItem{}, id)
	if result.Error != nil {
		a.log.WithError(result.Error).Error("Inventory delete failed")
		writeError(w, http.StatusInternalServerError, "Failed to delete inventory item")
		return
	}
	if result.RowsAffected == 0 {
		writeError(w, http.StatusNotFound, "Inventory item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return uint(id), true
}
