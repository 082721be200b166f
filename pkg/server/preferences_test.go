package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gridscope/gridscope/pkg/storage/storagemock"
	"github.com/gridscope/gridscope/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func decodePreferences(t *testing.T, w *httptest.ResponseRecorder) types.Preferences {
	t.Helper()
	var p types.Preferences
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	return p
}

func TestGetPreferences(t *testing.T) {
	t.Run("defaults for a new user", func(t *testing.T) {
		srv := newTestServer(&mockForecast{})
		req := withTestUser(httptest.NewRequest("GET", "/api/preferences", nil))
		w := httptest.NewRecorder()

		srv.handleGetPreferences(w, req)
		assert.Equal(t, http.StatusOK, w.Result().StatusCode)

		p := decodePreferences(t, w)
		assert.Equal(t, types.ThemeLight, p.Theme)
		// default timezone is America/Los_Angeles so units default to imperial
		assert.Equal(t, types.UnitsImperial, p.UnitSystem)
		assert.Equal(t, "STATEWIDE", p.SelectedZone)
		assert.Contains(t, w.Body.String(), `"stored":false`)
	})

	t.Run("stored preferences round-trip", func(t *testing.T) {
		srv := newTestServer(&mockForecast{})
		in := types.Preferences{Theme: types.ThemeDark, UnitSystem: types.UnitsMetric, SelectedZone: "SP15"}
		require.NoError(t, srv.storage.SetPreferences(context.Background(), DefaultUserID, in, types.CurrentPreferencesVersion))

		req := withTestUser(httptest.NewRequest("GET", "/api/preferences", nil))
		w := httptest.NewRecorder()
		srv.handleGetPreferences(w, req)

		assert.Equal(t, http.StatusOK, w.Result().StatusCode)
		assert.Equal(t, in, decodePreferences(t, w))
	})

	t.Run("unrecognized stored zone falls back to statewide", func(t *testing.T) {
		srv := newTestServer(&mockForecast{})
		in := types.Preferences{Theme: types.ThemeDark, UnitSystem: types.UnitsMetric, SelectedZone: "RETIRED_ZONE"}
		require.NoError(t, srv.storage.SetPreferences(context.Background(), DefaultUserID, in, types.CurrentPreferencesVersion))

		req := withTestUser(httptest.NewRequest("GET", "/api/preferences", nil))
		w := httptest.NewRecorder()
		srv.handleGetPreferences(w, req)

		p := decodePreferences(t, w)
		assert.Equal(t, "STATEWIDE", p.SelectedZone)
		assert.Equal(t, types.ThemeDark, p.Theme, "other fields survive the fallback")

		// the normalized value is written back
		stored, _, err := srv.storage.GetPreferences(context.Background(), DefaultUserID)
		require.NoError(t, err)
		assert.Equal(t, "STATEWIDE", stored.SelectedZone)
	})

	t.Run("storage failure is a 500", func(t *testing.T) {
		db := &storagemock.Database{}
		db.On("GetPreferences", mock.Anything, DefaultUserID).
			Return(types.Preferences{}, 0, assert.AnError)

		srv := newTestServer(&mockForecast{})
		srv.storage = db

		req := withTestUser(httptest.NewRequest("GET", "/api/preferences", nil))
		w := httptest.NewRecorder()
		srv.handleGetPreferences(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Result().StatusCode)
		assert.Contains(t, w.Body.String(), "failed to get preferences")
		db.AssertExpectations(t)
	})

	t.Run("old version is migrated on read", func(t *testing.T) {
		srv := newTestServer(&mockForecast{})
		in := types.Preferences{Theme: types.ThemeDark}
		require.NoError(t, srv.storage.SetPreferences(context.Background(), DefaultUserID, in, 1))

		req := withTestUser(httptest.NewRequest("GET", "/api/preferences", nil))
		w := httptest.NewRecorder()
		srv.handleGetPreferences(w, req)

		p := decodePreferences(t, w)
		assert.Equal(t, types.ThemeDark, p.Theme)
		assert.Equal(t, types.UnitsMetric, p.UnitSystem)
		assert.Equal(t, "STATEWIDE", p.SelectedZone)

		_, version, err := srv.storage.GetPreferences(context.Background(), DefaultUserID)
		require.NoError(t, err)
		assert.Equal(t, types.CurrentPreferencesVersion, version)
	})
}

func TestUpdatePreferences(t *testing.T) {
	srv := newTestServer(&mockForecast{})

	t.Run("valid update", func(t *testing.T) {
		body := `{"theme":"dark","unitSystem":"metric","selectedZone":"SDGE"}`
		req := withTestUser(httptest.NewRequest("POST", "/api/preferences", strings.NewReader(body)))
		w := httptest.NewRecorder()
		srv.handleUpdatePreferences(w, req)

		assert.Equal(t, http.StatusOK, w.Result().StatusCode)

		stored, version, err := srv.storage.GetPreferences(context.Background(), DefaultUserID)
		require.NoError(t, err)
		assert.Equal(t, types.ThemeDark, stored.Theme)
		assert.Equal(t, "SDGE", stored.SelectedZone)
		assert.Equal(t, types.CurrentPreferencesVersion, version)
	})

	t.Run("invalid theme", func(t *testing.T) {
		body := `{"theme":"sepia","unitSystem":"metric","selectedZone":"SDGE"}`
		req := withTestUser(httptest.NewRequest("POST", "/api/preferences", strings.NewReader(body)))
		w := httptest.NewRecorder()
		srv.handleUpdatePreferences(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
	})

	t.Run("unknown zone", func(t *testing.T) {
		body := `{"theme":"dark","unitSystem":"metric","selectedZone":"ERCOT"}`
		req := withTestUser(httptest.NewRequest("POST", "/api/preferences", strings.NewReader(body)))
		w := httptest.NewRecorder()
		srv.handleUpdatePreferences(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
		assert.Contains(t, w.Body.String(), "not a recognized zone")
	})

	t.Run("malformed body", func(t *testing.T) {
		req := withTestUser(httptest.NewRequest("POST", "/api/preferences", strings.NewReader("{")))
		w := httptest.NewRecorder()
		srv.handleUpdatePreferences(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
	})
}

func TestTogglePreference(t *testing.T) {
	toggle := func(t *testing.T, srv *Server, field string) types.Preferences {
		t.Helper()
		body := `{"field":"` + field + `"}`
		req := withTestUser(httptest.NewRequest("POST", "/api/preferences/toggle", strings.NewReader(body)))
		w := httptest.NewRecorder()
		srv.handleTogglePreference(w, req)
		require.Equal(t, http.StatusOK, w.Result().StatusCode)
		return decodePreferences(t, w)
	}

	t.Run("theme toggles and toggles back", func(t *testing.T) {
		srv := newTestServer(&mockForecast{})

		p := toggle(t, srv, "theme")
		assert.Equal(t, types.ThemeDark, p.Theme)

		p = toggle(t, srv, "theme")
		assert.Equal(t, types.ThemeLight, p.Theme, "toggling twice returns the original theme")
	})

	t.Run("units toggle", func(t *testing.T) {
		srv := newTestServer(&mockForecast{})

		// defaults to imperial under the test timezone
		p := toggle(t, srv, "units")
		assert.Equal(t, types.UnitsMetric, p.UnitSystem)

		p = toggle(t, srv, "units")
		assert.Equal(t, types.UnitsImperial, p.UnitSystem)
	})

	t.Run("unknown field", func(t *testing.T) {
		srv := newTestServer(&mockForecast{})
		req := withTestUser(httptest.NewRequest("POST", "/api/preferences/toggle", strings.NewReader(`{"field":"zone"}`)))
		w := httptest.NewRecorder()
		srv.handleTogglePreference(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
	})
}
