package handlers

import (
	"errors"
	"net/http"

	"github.com/galaxytools/craft-tracker/internal/models"
	"github.com/galaxytools/craft-tracker/internal/upstream"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

func (a *API) HandleResourcesList(w http.ResponseWriter, r *http.Request) {
	query := a.db.WithContext(r.Context()).Order("name asc")
	if class := r.URL.Query().Get("class"); class != "" {
		query = query.Where("class_id = ?", class)
	}

	var resources []models.Resource
	if err := query.Find(&resources).Error; err != nil {
		a.log.WithError(err).Error("Resource query failed")
		writeError(w, http.StatusInternalServerError, "Failed to load resources")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"resources": resources})
}

// HandleResourceLookup asks the upstream provider for one resource,
// serving from the SOAP cache when possible. Rate-limit denial with no
// cached fallback surfaces as 429.
func (a *API) HandleResourceLookup(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if name == "" {
		writeError(w, http.StatusBadRequest, "Resource name is required")
		return
	}

	payload, cached, err := a.upstream.LookupResource(r.Context(), name)
	if errors.Is(err, upstream.ErrRateLimited) {
		writeError(w, http.StatusTooManyRequests, "Upstream rate limit exceeded, try again later")
		return
	}
	if err != nil {
		a.log.WithFields(logrus.Fields{
			"resource": name,
			"error":    err,
		}).Error("Upstream resource lookup failed")
		writeError(w, http.StatusBadGateway, "Upstream lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    name,
		"cached":  cached,
		"payload": payload,
	})
}

func (a *API) HandleCatalogSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resources, err := a.syncer.SyncResources(ctx)
	if errors.Is(err, upstream.ErrRateLimited) {
		writeError(w, http.StatusTooManyRequests, "Upstream rate limit exceeded, try again later")
		return
	}
	if err != nil {
		a.log.WithError(err).Error("Resource catalog sync failed")
		writeError(w, http.StatusBadGateway, "Resource catalog sync failed")
		return
	}

	schematics, err := a.syncer.SyncSchematics(ctx)
	if errors.Is(err, upstream.ErrRateLimited) {
		writeError(w, http.StatusTooManyRequests, "Upstream rate limit exceeded, try again later")
		return
	}
	if err != nil {
		a.log.WithError(err).Error("Schematic catalog sync failed")
		writeError(w, http.StatusBadGateway, "Schematic catalog sync failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": []interface{}{resources, schematics},
	})
}
