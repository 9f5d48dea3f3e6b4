package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sketchwork/assessment-service/internal/models"
	"github.com/sketchwork/assessment-service/pkg/sharecode"
)

func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	result, err := h.assignmentService.CreateWithRubric(ctx, &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	assignmentID := chi.URLParam(r, "id")
	if assignmentID == "" {
		writeError(w, http.StatusBadRequest, "Assignment ID is required")
		return
	}

	ctx := r.Context()
	result, err := h.assignmentService.GetDetails(ctx, assignmentID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// LookupAssignment resolves a share code to the assignment students join.
// Codes are matched case-insensitively and only the id and title are
// exposed: the joining student never sees the rubric.
func (h *Handler) LookupAssignment(w http.ResponseWriter, r *http.Request) {
	code := sharecode.Normalize(r.URL.Query().Get("code"))
	if !sharecode.Valid(code) {
		writeError(w, http.StatusBadRequest, "Share code must be 6 characters")
		return
	}

	ctx := r.Context()
	assignment, err := h.assignmentService.LookupByShareCode(ctx, code)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.AssignmentLookupResponse{
		ID:    assignment.ID,
		Title: assignment.Title,
	})
}

func (h *Handler) UpdateRubric(w http.ResponseWriter, r *http.Request) {
	assignmentID := chi.URLParam(r, "id")
	if assignmentID == "" {
		writeError(w, http.StatusBadRequest, "Assignment ID is required")
		return
	}

	var req models.UpdateRubricRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	rubric, err := h.assignmentService.UpdateRubric(ctx, assignmentID, &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rubric)
}

func (h *Handler) GetAssignmentReport(w http.ResponseWriter, r *http.Request) {
	assignmentID := chi.URLParam(r, "id")
	if assignmentID == "" {
		writeError(w, http.StatusBadRequest, "Assignment ID is required")
		return
	}

	ctx := r.Context()
	report, err := h.reportService.GetAssignmentReport(ctx, assignmentID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) GetStudentSubmissions(w http.ResponseWriter, r *http.Request) {
	assignmentID := chi.URLParam(r, "id")
	studentID := chi.URLParam(r, "studentID")
	if assignmentID == "" || studentID == "" {
		writeError(w, http.StatusBadRequest, "Assignment ID and student ID are required")
		return
	}

	ctx := r.Context()
	submissions, err := h.submissionService.GetByStudent(ctx, assignmentID, studentID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"submissions": submissions,
	})
}
