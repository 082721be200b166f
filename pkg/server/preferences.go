package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gridscope/gridscope/pkg/log"
	"github.com/gridscope/gridscope/pkg/storage"
	"github.com/gridscope/gridscope/pkg/types"
	"github.com/gridscope/gridscope/pkg/units"
	"github.com/gridscope/gridscope/pkg/zones"
)

// defaultPreferences builds the preferences for a user who has never saved
// any: light theme, units inferred from the deployment timezone, statewide.
func (s *Server) defaultPreferences() types.Preferences {
	return types.Preferences{
		Theme:        types.ThemeLight,
		UnitSystem:   units.DefaultSystem(s.defaultTimezone),
		SelectedZone: zones.Statewide,
	}
}

// preferencesWithDefaults loads a user's preferences, applying defaults for
// new users, migrating stale records, and normalizing a stored zone that is
// no longer recognized. Migrated records are written back.
func (s *Server) preferencesWithDefaults(ctx context.Context, userID string) (types.Preferences, bool, error) {
	prefs, version, err := s.storage.GetPreferences(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return s.defaultPreferences(), false, nil
	}
	if err != nil {
		return types.Preferences{}, false, err
	}

	prefs, migrated, err := types.MigratePreferences(prefs, version)
	if err != nil {
		return types.Preferences{}, false, err
	}
	if normalized := zones.Normalize(prefs.SelectedZone); normalized != prefs.SelectedZone {
		log.Ctx(ctx).WarnContext(ctx, "stored zone no longer recognized",
			slog.String("userID", userID),
			slog.String("zone", prefs.SelectedZone))
		prefs.SelectedZone = normalized
		migrated = true
	}
	if migrated {
		if err := s.storage.SetPreferences(ctx, userID, prefs, types.CurrentPreferencesVersion); err != nil {
			return types.Preferences{}, false, err
		}
	}
	return prefs, true, nil
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := s.getUser(r)

	prefs, stored, err := s.preferencesWithDefaults(ctx, user.ID)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to get preferences", slog.Any("error", err))
		writeJSONError(w, "failed to get preferences", http.StatusInternalServerError)
		return
	}

	writeJSON(w, struct {
		types.Preferences
		Stored bool `json:"stored"`
	}{Preferences: prefs, Stored: stored})
}

func validatePreferences(p types.Preferences) string {
	if !p.Theme.Valid() {
		return "theme must be light or dark"
	}
	if !p.UnitSystem.Valid() {
		return "unitSystem must be metric or imperial"
	}
	if !zones.Valid(p.SelectedZone) {
		return "selectedZone is not a recognized zone"
	}
	return ""
}

func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := s.getUser(r)

	var prefs types.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to decode preferences", slog.Any("error", err))
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if msg := validatePreferences(prefs); msg != "" {
		writeJSONError(w, msg, http.StatusBadRequest)
		return
	}

	if err := s.storage.SetPreferences(ctx, user.ID, prefs, types.CurrentPreferencesVersion); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to save preferences", slog.Any("error", err))
		writeJSONError(w, "failed to save preferences", http.StatusInternalServerError)
		return
	}
	s.metrics.preferenceWrites.Inc()

	writeJSON(w, prefs)
}

type togglePreferenceRequest struct {
	Field string `json:"field"`
}

// handleTogglePreference flips the theme or unit system, matching the
// dashboard's toggle buttons. Toggling twice restores the original value.
func (s *Server) handleTogglePreference(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := s.getUser(r)

	var req togglePreferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	prefs, _, err := s.preferencesWithDefaults(ctx, user.ID)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to get preferences", slog.Any("error", err))
		writeJSONError(w, "failed to get preferences", http.StatusInternalServerError)
		return
	}

	switch req.Field {
	case "theme":
		prefs.Theme = prefs.Theme.Toggled()
	case "units":
		prefs.UnitSystem = prefs.UnitSystem.Toggled()
	default:
		writeJSONError(w, "field must be theme or units", http.StatusBadRequest)
		return
	}

	if err := s.storage.SetPreferences(ctx, user.ID, prefs, types.CurrentPreferencesVersion); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to save preferences", slog.Any("error", err))
		writeJSONError(w, "failed to save preferences", http.StatusInternalServerError)
		return
	}
	s.metrics.preferenceWrites.Inc()

	writeJSON(w, prefs)
}
