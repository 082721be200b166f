package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gridscope/gridscope/pkg/log"
	"github.com/gridscope/gridscope/pkg/trend"
	"github.com/gridscope/gridscope/pkg/types"
	"github.com/gridscope/gridscope/pkg/zones"
)

// demandTrendResponse bundles the raw trend with the precomputed display
// labels and the zone's static metadata.
type demandTrendResponse struct {
	Trend   types.DemandTrend `json:"trend"`
	Summary trend.Summary     `json:"summary"`
	Zone    zones.Zone        `json:"zone"`
}

func (s *Server) handleDemandTrend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	zoneKey := r.URL.Query().Get("zone")
	if zoneKey == "" {
		// fall back to the user's saved zone selection
		prefs, _, err := s.preferencesWithDefaults(ctx, s.getUser(r).ID)
		if err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to get preferences", slog.Any("error", err))
			writeJSONError(w, "failed to get preferences", http.StatusInternalServerError)
			return
		}
		zoneKey = zones.Normalize(prefs.SelectedZone)
	}

	z, ok := zones.Get(zoneKey)
	if !ok {
		writeJSONError(w, "unknown zone", http.StatusBadRequest)
		return
	}

	t, err := s.forecast.DemandTrend(ctx, zoneKey)
	s.metrics.observeUpstream(err)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to get demand trend",
			slog.String("zone", zoneKey),
			slog.Any("error", err))
		writeJSONError(w, "forecast service unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=30")
	writeJSON(w, demandTrendResponse{
		Trend:   t,
		Summary: trend.Summarize(t, time.Now()),
		Zone:    z,
	})
}
