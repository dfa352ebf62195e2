// internal/infra/httpapi/handler.go
package httpapi

import (
	"encoding/json"
	"net/http"

	"meditation_notification_service/internal/app"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server exposes the dispatch trigger and operational endpoints.
type Server struct {
	runner app.DispatchRunner
	logger *logrus.Logger
}

func NewServer(runner app.DispatchRunner, logger *logrus.Logger) *Server {
	return &Server{runner: runner, logger: logger}
}

// Router builds the HTTP routes for the service.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/internal/dispatch/run", s.handleDispatchRun).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

type runResponse struct {
	Success   bool                     `json:"success"`
	Processed int                      `json:"processed"`
	Results   []app.NotificationResult `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleDispatchRun runs one dispatch cycle on demand. A batch that cannot
// start at all is the only case that surfaces as an HTTP error; individual
// notification failures are reported inside the result list.
func (s *Server) handleDispatchRun(w http.ResponseWriter, r *http.Request) {
	summary, err := s.runner.Run(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("Dispatch run could not start")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, runResponse{
		Success:   true,
		Processed: summary.Processed,
		Results:   summary.Results,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck // response already committed
}
