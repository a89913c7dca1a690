package handlers

import (
	"net/http"

	"github.com/galaxytools/craft-tracker/internal/classtree"
	"github.com/galaxytools/craft-tracker/internal/models"
)

// HandleClasses returns the resource classification hierarchy, either as a
// rooted forest (default) or as the flat pre-sorted row list.
func (a *API) HandleClasses(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "tree"
	}
	if format != "tree" && format != "flat" {
		writeError(w, http.StatusBadRequest, "format must be 'tree' or 'flat'")
		return
	}

	var rows []models.ResourceClass
	if err := a.db.WithContext(r.Context()).
		Order("depth asc, name asc").
		Find(&rows).Error; err != nil {
		a.log.WithError(err).Error("Resource class query failed")
		writeError(w, http.StatusInternalServerError, "Failed to load resource classes")
		return
	}

	nodes := make([]classtree.Node, len(rows))
	for i, row := range rows {
		nodes[i] = classtree.Node{
			ID:       row.ID,
			ParentID: row.ParentID,
			Depth:    row.Depth,
			Name:     row.Name,
		}
	}

	result := classtree.Build(a.log, nodes)
	if format == "flat" {
		writeJSON(w, http.StatusOK, map[string]interface{}{"classes": result.Flat})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"classes": result.Roots})
}
