package handlers

import (
	"net/http"
)

// Operator endpoints. No auth per deployment model; these sit behind the
// same network boundary as the rest of the service.

func (a *API) HandleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.cache.Stats(r.Context())
	if err != nil {
		a.log.WithError(err).Error("Cache stats query failed")
		writeError(w, http.StatusInternalServerError, "Failed to read cache stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleCacheCleanup runs one sweep pass identical to a scheduled tick,
// including the skip-below-threshold rule and before/after stats.
func (a *API) HandleCacheCleanup(w http.ResponseWriter, r *http.Request) {
	report, err := a.scheduler.RunOnce(r.Context())
	if err != nil {
		a.log.WithError(err).Error("Manual cache sweep failed")
		writeError(w, http.StatusInternalServerError, "Cache sweep failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) HandleRateLimitStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.limiter.Stats())
}
