/*
handlers.go - HTTP API handlers for the people reports service

PURPOSE:
  Exposes the people directory and the canned reports via a REST API.
  Handles HTTP request/response, JSON serialization, and delegates to the
  directory and reporter.

ENDPOINTS:
  Reports:
    GET    /api/reports                List report names and descriptions
    GET    /api/reports/summary        Run every report
    GET    /api/reports/{name}         Run one report

  Directory:
    GET    /api/people                 List people
    POST   /api/people                 Create person
    GET    /api/people/{id}            Get person
    GET    /api/locations              List locations
    POST   /api/locations              Create location
    GET    /api/roles                  List roles
    POST   /api/roles                  Create role

ARCHITECTURE:
  Handler holds the directory (writes and lookups) and the reporter (the
  eight reports). Both usually wrap the same store.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, missing references
  - 404: Unknown person, report or scenario
  - 500: Storage errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo dataset endpoints
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"golang.org/x/sync/errgroup"

	"github.com/warp/people-reports/people"
	"github.com/warp/people-reports/reporting"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Directory people.Directory
	Reports   people.Reporter

	log      zerolog.Logger
	validate *validator.Validate

	// Track currently loaded scenario
	mu              sync.RWMutex
	currentScenario string
}

// NewHandler creates a new handler over the given directory and reporter.
func NewHandler(dir people.Directory, reports people.Reporter, log zerolog.Logger) *Handler {
	return &Handler{
		Directory: dir,
		Reports:   reports,
		log:       log.With().Str("component", "api").Logger(),
		validate:  validator.New(),
	}
}

// pinger is implemented by stores backed by a database connection.
type pinger interface {
	Ping(ctx context.Context) error
}

// Health reports liveness, including the database when there is one.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.Directory.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Database unavailable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// REPORT ENDPOINTS
// =============================================================================

// ListReports returns the report catalog.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	catalog := reporting.Catalog()
	out := make([]ReportDTO, len(catalog))
	for i, rep := range catalog {
		out[i] = ReportDTO{Name: rep.Name, Description: rep.Description}
	}
	writeJSON(w, http.StatusOK, out)
}

// RunReport runs the report named in the URL.
func (h *Handler) RunReport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	rep, err := reporting.Lookup(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "Report not found", err)
		return
	}

	result, err := rep.Run(r.Context(), h.Reports)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("report", name).Msg("report failed")
		writeError(w, http.StatusInternalServerError, "Failed to run report", err)
		return
	}

	writeJSON(w, http.StatusOK, ReportResultDTO{Report: name, Result: result})
}

// ReportSummary runs every report concurrently and returns them keyed by
// name. Any failure fails the whole response.
func (h *Handler) ReportSummary(w http.ResponseWriter, r *http.Request) {
	catalog := reporting.Catalog()
	results := make([]any, len(catalog))

	g, ctx := errgroup.WithContext(r.Context())
	for i, rep := range catalog {
		i, rep := i, rep
		g.Go(func() error {
			result, err := rep.Run(ctx, h.Reports)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("report summary failed")
		writeError(w, http.StatusInternalServerError, "Failed to run reports", err)
		return
	}

	out := make(map[string]any, len(catalog))
	for i, rep := range catalog {
		out[rep.Name] = results[i]
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// PEOPLE ENDPOINTS
// =============================================================================

// ListPeople returns everyone.
func (h *Handler) ListPeople(w http.ResponseWriter, r *http.Request) {
	all, err := h.Directory.ListPeople(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list people", err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// GetPerson returns a single person.
func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid person ID", err)
		return
	}

	p, err := h.Directory.GetPerson(r.Context(), people.PersonID(id))
	if err != nil {
		writeDirectoryError(w, "Failed to get person", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreatePerson creates a new person.
func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req CreatePersonRequest
	if !h.decode(w, r, &req) {
		return
	}

	p, err := req.toPerson()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid salary", err)
		return
	}

	saved, err := h.Directory.SavePerson(r.Context(), p)
	if err != nil {
		writeDirectoryError(w, "Failed to create person", err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// =============================================================================
// LOCATION & ROLE ENDPOINTS
// =============================================================================

// ListLocations returns every location.
func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	all, err := h.Directory.ListLocations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list locations", err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// CreateLocation creates a new location.
func (h *Handler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req CreateLocationRequest
	if !h.decode(w, r, &req) {
		return
	}

	saved, err := h.Directory.SaveLocation(r.Context(), people.Location{Name: req.Name})
	if err != nil {
		writeDirectoryError(w, "Failed to create location", err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// ListRoles returns every role.
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	all, err := h.Directory.ListRoles(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list roles", err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// CreateRole creates a new role.
func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if !h.decode(w, r, &req) {
		return
	}

	saved, err := h.Directory.SaveRole(r.Context(), people.Role{Name: req.Name, Billable: req.Billable})
	if err != nil {
		writeDirectoryError(w, "Failed to create role", err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// =============================================================================
// HELPERS
// =============================================================================

// decode reads and validates a JSON body. It writes the 400 itself and
// returns false on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: fields})
			return false
		}
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

// writeDirectoryError maps directory sentinels to HTTP statuses.
func writeDirectoryError(w http.ResponseWriter, message string, err error) {
	var verr *people.ValidationError
	switch {
	case errors.Is(err, people.ErrPersonNotFound):
		writeError(w, http.StatusNotFound, "Person not found", err)
	case errors.As(err, &verr),
		errors.Is(err, people.ErrLocationNotFound),
		errors.Is(err, people.ErrRoleNotFound),
		errors.Is(err, people.ErrManagerNotFound):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
