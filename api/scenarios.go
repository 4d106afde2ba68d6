/*
scenarios.go - Demo dataset endpoints

PURPOSE:
  Lists the embedded datasets and loads one into the directory, replacing
  whatever was there, so every report can be tried against known data.

SCENARIOS:
  See dataset/scenarios/*.yaml. Each file reproduces one report's worked
  example; org-chart combines them.
*/
package api

import (
	"errors"
	"net/http"

	"github.com/warp/people-reports/dataset"
)

// ListScenarios returns all available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	all, err := dataset.Scenarios()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read scenarios", err)
		return
	}

	out := make([]ScenarioDTO, len(all))
	for i, f := range all {
		out[i] = toScenarioDTO(f)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	f, err := dataset.Scenario(current)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read scenario", err)
		return
	}
	writeJSON(w, http.StatusOK, toScenarioDTO(f))
}

// LoadScenario resets the directory and loads a predefined scenario. A load
// that fails partway leaves the directory empty.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !h.decode(w, r, &req) {
		return
	}

	f, err := dataset.Scenario(req.ScenarioID)
	if errors.Is(err, dataset.ErrUnknownScenario) {
		writeError(w, http.StatusNotFound, "Scenario not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read scenario", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := r.Context()
	if err := h.Directory.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	if _, err := f.Load(ctx, h.Directory); err != nil {
		// Drop whatever was inserted before the failure.
		if resetErr := h.Directory.Reset(ctx); resetErr != nil {
			err = errors.Join(err, resetErr)
		}
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}
	h.currentScenario = f.Name

	h.log.Info().Str("scenario", f.Name).Int("people", len(f.People)).Msg("scenario loaded")
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"scenario": f.Name,
	})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Directory.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func toScenarioDTO(f *dataset.File) ScenarioDTO {
	return ScenarioDTO{
		ID:          f.Name,
		Description: f.Description,
		People:      len(f.People),
		Locations:   len(f.Locations),
		Roles:       len(f.Roles),
	}
}
