package server

import (
	"net/http"

	"github.com/gridscope/gridscope/pkg/zones"
)

// zone data is static, cache for a day
const zoneCacheControl = "public, max-age=86400"

func (s *Server) handleListZones(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", zoneCacheControl)
	writeJSON(w, struct {
		Zones      []zones.Zone     `json:"zones"`
		Categories []zones.Category `json:"categories"`
	}{
		Zones:      zones.All(),
		Categories: zones.Categories(),
	})
}

func (s *Server) handleGetZone(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("zone")
	z, ok := zones.Get(key)
	if !ok {
		writeJSONError(w, "unknown zone", http.StatusNotFound)
		return
	}
	w.Header().Set("Cache-Control", zoneCacheControl)
	writeJSON(w, z)
}
