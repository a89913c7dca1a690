package handlers

import (
	"net/http"

	"github.com/galaxytools/craft-tracker/internal/models"
)

func (a *API) HandleSchematicsList(w http.ResponseWriter, r *http.Request) {
	query := a.db.WithContext(r.Context()).Order("category asc, name asc")
	if category := r.URL.Query().Get("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var schematics []models.Schematic
	if err := query.Find(&schematics).Error; err != nil {
		a.log.WithError(err).Error("Schematic query failed")
		writeError(w, http.StatusInternalServerError, "Failed to load schematics")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"schematics": schematics})
}
