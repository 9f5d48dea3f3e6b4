package httpd

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/sketchwork/assessment-service/internal/common"
	"github.com/sketchwork/assessment-service/internal/service"
)

var validate = validator.New()

type Handler struct {
	assignmentService service.AssignmentService
	studentService    service.StudentService
	submissionService service.SubmissionService
	reportService     service.ReportService
	logger            zerolog.Logger
}

func NewHandler(
	assignmentService service.AssignmentService,
	studentService service.StudentService,
	submissionService service.SubmissionService,
	reportService service.ReportService,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		assignmentService: assignmentService,
		studentService:    studentService,
		submissionService: submissionService,
		reportService:     reportService,
		logger:            logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	router.Route("/api/v1", func(api chi.Router) {
		api.Route("/assignments", func(r chi.Router) {
			r.Post("/", h.CreateAssignment)
			r.Get("/lookup", h.LookupAssignment)
			r.Get("/{id}", h.GetAssignment)
			r.Patch("/{id}/rubric", h.UpdateRubric)
			r.Get("/{id}/report", h.GetAssignmentReport)
			r.Get("/{id}/students/{studentID}/submissions", h.GetStudentSubmissions)
		})

		api.Route("/students", func(r chi.Router) {
			r.Post("/", h.CreateStudent)
		})

		api.Route("/submissions", func(r chi.Router) {
			r.Post("/", h.CreateSubmission)
		})
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "assessment-service",
		"timestamp": time.Now().UTC(),
	}

	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Store failures keep their kind in the response body; anything
// unclassified stays a generic 500 so internals never leak.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	status := common.HTTPStatusFromError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Msg("Service error")
		message := "Internal server error"
		if errors.Is(err, common.ErrStore) {
			message = common.ErrStore.Error()
		}
		writeError(w, status, message)
		return
	}

	writeError(w, status, err.Error())
}
