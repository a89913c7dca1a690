package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/galaxytools/craft-tracker/internal/sales"
)

type mailImportRequest struct {
	ObjectKey string `json:"object_key" validate:"required"`
}

func (a *API) HandleMailImport(w http.ResponseWriter, r *http.Request) {
	var req mailImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := a.importer.Import(r.Context(), req.ObjectKey)
	if err != nil {
		a.log.WithError(err).Error("Mail import failed")
		writeError(w, http.StatusBadGateway, "Mail import failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleMailExports lists the export objects available for import,
// optionally narrowed by a key prefix.
func (a *API) HandleMailExports(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")

	keys, err := a.mails.List(r.Context(), prefix)
	if err != nil {
		a.log.WithError(err).Error("Mail export listing failed")
		writeError(w, http.StatusBadGateway, "Failed to list mail exports")
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"exports": keys})
}

func (a *API) HandleSalesSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := sales.Summary(r.Context(), a.db)
	if err != nil {
		a.log.WithError(err).Error("Sales summary failed")
		writeError(w, http.StatusInternalServerError, "Failed to build sales summary")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": summary})
}
