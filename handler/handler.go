// Package handler provides the HTTP handlers for the fitness API.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/stevemurr/fitness-server/fitness"
	"github.com/stevemurr/fitness-server/logging"
	"github.com/stevemurr/fitness-server/models"
	"github.com/stevemurr/fitness-server/schema"
	"github.com/stevemurr/fitness-server/store"
)

// maxBodyBytes bounds request payloads.
const maxBodyBytes = 1 << 20

// Handler holds the server dependencies and registers routes.
type Handler struct {
	svc    *fitness.Service
	logger logrus.FieldLogger
	mux    *http.ServeMux
}

// New creates a Handler and wires up all routes.
func New(svc *fitness.Service, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	h := &Handler{svc: svc, logger: logger, mux: http.NewServeMux()}
	h.routes()
	return h
}

// ServeHTTP makes Handler an http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	// Health / status
	h.mux.HandleFunc("GET /", h.root)
	h.mux.HandleFunc("GET /health", h.health)
	h.mux.HandleFunc("GET /test", h.diagnose)

	h.mux.HandleFunc("GET /api/workouts", h.listWorkouts)
	h.mux.HandleFunc("POST /api/workouts", h.createWorkout)
	h.mux.HandleFunc("GET /api/logs", h.listLogs)
	h.mux.HandleFunc("POST /api/logs", h.createLog)

	h.mux.HandleFunc("GET /schema", h.listSchemas)
}

// ---------- helpers ----------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

// readObject decodes the body as a JSON object.
func readObject(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	defer r.Body.Close()
	var v map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&v); err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errors.New("expected a JSON object")
	}
	return v, nil
}

type itemsResponse struct {
	Items []store.Document `json:"items"`
}

type idResponse struct {
	ID string `json:"id"`
}

// writeFailure maps service errors onto status codes: validation problems
// are the client's, everything else is ours.
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, err error, msg string) {
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": verr.Violations})
		return
	}
	logging.FromContext(r.Context(), h.logger).WithError(err).Error(msg)
	writeError(w, http.StatusInternalServerError, err.Error())
}

// ---------- status endpoints ----------

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	// Only match exact root path
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Fitness App Backend is running"})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) diagnose(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Diagnose(r.Context()))
}

// ---------- workouts ----------

func (h *Handler) listWorkouts(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListWorkouts(r.Context())
	if err != nil {
		h.writeFailure(w, r, err, "list workouts")
		return
	}
	writeJSON(w, http.StatusOK, itemsResponse{Items: items})
}

func (h *Handler) createWorkout(w http.ResponseWriter, r *http.Request) {
	raw, err := readObject(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	workout, err := models.DecodeWorkout(raw)
	if err != nil {
		h.writeFailure(w, r, err, "decode workout")
		return
	}
	id, err := h.svc.CreateWorkout(r.Context(), workout)
	if err != nil {
		h.writeFailure(w, r, err, "create workout")
		return
	}
	writeJSON(w, http.StatusOK, idResponse{ID: id})
}

// ---------- logs ----------

func (h *Handler) listLogs(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListLogs(r.Context())
	if err != nil {
		h.writeFailure(w, r, err, "list logs")
		return
	}
	writeJSON(w, http.StatusOK, itemsResponse{Items: items})
}

func (h *Handler) createLog(w http.ResponseWriter, r *http.Request) {
	raw, err := readObject(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	entry, err := models.DecodeLog(raw)
	if err != nil {
		h.writeFailure(w, r, err, "decode log")
		return
	}
	id, err := h.svc.CreateLog(r.Context(), entry)
	if err != nil {
		h.writeFailure(w, r, err, "create log")
		return
	}
	writeJSON(w, http.StatusOK, idResponse{ID: id})
}

// ---------- schema endpoint ----------

func (h *Handler) listSchemas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, schema.Schemas())
}
