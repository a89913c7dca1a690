package handlers

import (
	"github.com/gorilla/mux"
)

func RegisterRoutes(r *mux.Router, api *API) {
	r.HandleFunc("/api/classes", api.HandleClasses).Methods("GET")

	r.HandleFunc("/api/resources", api.HandleResourcesList).Methods("GET")
	r.HandleFunc("/api/resources/{name}", api.HandleResourceLookup).Methods("GET")
	r.HandleFunc("/api/catalog/sync", api.HandleCatalogSync).Methods("POST")

	r.HandleFunc("/api/schematics", api.HandleSchematicsList).Methods("GET")

	r.HandleFunc("/api/inventory", api.HandleInventoryList).Methods("GET")
	r.HandleFunc("/api/inventory", api.HandleInventoryCreate).Methods("POST")
	r.HandleFunc("/api/inventory/{id}", api.HandleInventoryGet).Methods("GET")
	r.HandleFunc("/api/inventory/{id}", api.HandleInventoryUpdate).Methods("PUT")
	r.HandleFunc("/api/inventory/{id}", api.HandleInventoryDelete).Methods("DELETE")

	r.HandleFunc("/api/mail/exports", api.HandleMailExports).Methods("GET")
	r.HandleFunc("/api/mail/import", api.HandleMailImport).Methods("POST")
	r.HandleFunc("/api/sales/summary", api.HandleSalesSummary).Methods("GET")

	r.HandleFunc("/admin/cache/stats", api.HandleCacheStats).Methods("GET")
	r.HandleFunc("/admin/cache/cleanup", api.HandleCacheCleanup).Methods("POST")
	r.HandleFunc("/admin/ratelimit", api.HandleRateLimitStats).Methods("GET")
}
