package httpd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sketchwork/assessment-service/internal/common"
	"github.com/sketchwork/assessment-service/internal/models"
)

type fakeAssignmentService struct {
	created    *models.AssignmentWithRubric
	createErr  error
	details    *models.AssignmentWithRubric
	lookup     *models.Assignment
	lookupErr  error
	lookupCode string
	rubric     *models.Rubric
	updateErr  error
}

func (f *fakeAssignmentService) CreateWithRubric(_ context.Context, _ *models.CreateAssignmentRequest) (*models.AssignmentWithRubric, error) {
	return f.created, f.createErr
}

func (f *fakeAssignmentService) GetDetails(_ context.Context, id string) (*models.AssignmentWithRubric, error) {
	if f.details == nil {
		return nil, fmt.Errorf("assignment %s: %w", id, common.ErrNotFound)
	}
	return f.details, nil
}

func (f *fakeAssignmentService) LookupByShareCode(_ context.Context, code string) (*models.Assignment, error) {
	f.lookupCode = code
	return f.lookup, f.lookupErr
}

func (f *fakeAssignmentService) UpdateRubric(_ context.Context, _ string, _ *models.UpdateRubricRequest) (*models.Rubric, error) {
	return f.rubric, f.updateErr
}

type fakeStudentService struct {
	student *models.Student
	err     error
}

func (f *fakeStudentService) CreateStudent(_ context.Context, _ *models.CreateStudentRequest) (*models.Student, error) {
	return f.student, f.err
}

type fakeSubmissionService struct {
	response    *models.SubmissionGradeResponse
	err         error
	submissions []models.Submission
}

func (f *fakeSubmissionService) SubmitAndGrade(_ context.Context, _ *models.CreateSubmissionRequest) (*models.SubmissionGradeResponse, error) {
	return f.response, f.err
}

func (f *fakeSubmissionService) RegradeSubmission(_ context.Context, _ string) error {
	return nil
}

func (f *fakeSubmissionService) GetByStudent(_ context.Context, _, _ string) ([]models.Submission, error) {
	return f.submissions, f.err
}

type fakeReportService struct {
	report *models.AssignmentReport
	err    error
}

func (f *fakeReportService) GetAssignmentReport(_ context.Context, _ string) (*models.AssignmentReport, error) {
	return f.report, f.err
}

type handlerFixture struct {
	assignments *fakeAssignmentService
	students    *fakeStudentService
	submissions *fakeSubmissionService
	reports     *fakeReportService
	router      chi.Router
}

func newHandlerFixture() *handlerFixture {
	f := &handlerFixture{
		assignments: &fakeAssignmentService{},
		students:    &fakeStudentService{},
		submissions: &fakeSubmissionService{},
		reports:     &fakeReportService{},
	}

	handler := NewHandler(f.assignments, f.students, f.submissions, f.reports, zerolog.Nop())
	f.router = chi.NewRouter()
	handler.RegisterRoutes(f.router)
	return f
}

func (f *handlerFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateAssignmentHandler(t *testing.T) {
	validBody := models.CreateAssignmentRequest{
		Title:       "Fractions quiz",
		Description: "Adding fractions",
		TeacherID:   "2b1e77aa-0000-4000-8000-000000000000",
	}

	t.Run("created", func(t *testing.T) {
		f := newHandlerFixture()
		f.assignments.created = &models.AssignmentWithRubric{
			Assignment: models.Assignment{ID: "a1", ShareCode: "AB23CD"},
		}

		rec := f.do(t, http.MethodPost, "/api/v1/assignments", validBody)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), "AB23CD")
	})

	t.Run("missing title is rejected", func(t *testing.T) {
		f := newHandlerFixture()
		body := validBody
		body.Title = ""

		rec := f.do(t, http.MethodPost, "/api/v1/assignments", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("generation failure maps to bad gateway", func(t *testing.T) {
		f := newHandlerFixture()
		f.assignments.createErr = fmt.Errorf("model returned 3 problems: %w", common.ErrGeneration)

		rec := f.do(t, http.MethodPost, "/api/v1/assignments", validBody)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("store failure names its kind without leaking details", func(t *testing.T) {
		f := newHandlerFixture()
		f.assignments.createErr = fmt.Errorf("failed to create assignment: %w",
			common.WrapStore(fmt.Errorf("dial tcp 10.0.0.5:5432: connection refused")))

		rec := f.do(t, http.MethodPost, "/api/v1/assignments", validBody)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "storage failure")
		assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	})
}

func TestLookupAssignmentHandler(t *testing.T) {
	t.Run("lowercase code resolves", func(t *testing.T) {
		f := newHandlerFixture()
		f.assignments.lookup = &models.Assignment{
			ID:        "a1",
			Title:     "Fractions quiz",
			TeacherID: "teacher-1",
			ShareCode: "AB23CD",
		}

		rec := f.do(t, http.MethodGet, "/api/v1/assignments/lookup?code=ab23cd", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "AB23CD", f.assignments.lookupCode)

		var resp models.AssignmentLookupResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "a1", resp.ID)
		assert.Equal(t, "Fractions quiz", resp.Title)

		// The lookup response must not leak the teacher or share code.
		assert.NotContains(t, rec.Body.String(), "teacher-1")
	})

	t.Run("wrong length is rejected before lookup", func(t *testing.T) {
		f := newHandlerFixture()

		rec := f.do(t, http.MethodGet, "/api/v1/assignments/lookup?code=AB", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, f.assignments.lookupCode)
	})

	t.Run("unknown code is not found", func(t *testing.T) {
		f := newHandlerFixture()
		f.assignments.lookupErr = fmt.Errorf("share code ZZZZZZ: %w", common.ErrNotFound)

		rec := f.do(t, http.MethodGet, "/api/v1/assignments/lookup?code=ZZZZZZ", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCreateSubmissionHandler(t *testing.T) {
	validBody := models.CreateSubmissionRequest{
		AssignmentID: "2b1e77aa-0000-4000-8000-000000000001",
		StudentID:    "2b1e77aa-0000-4000-8000-000000000002",
		ProblemIndex: 0,
		Whiteboard:   models.WhiteboardData{ImageURL: "data:image/png;base64,aGVsbG8="},
	}

	t.Run("created with grade", func(t *testing.T) {
		f := newHandlerFixture()
		f.submissions.response = &models.SubmissionGradeResponse{
			SubmissionID: "sub-1",
			PointsEarned: 32,
			TotalPoints:  40,
		}

		rec := f.do(t, http.MethodPost, "/api/v1/submissions", validBody)
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp models.SubmissionGradeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 32, resp.PointsEarned)
		assert.Equal(t, 40, resp.TotalPoints)
	})

	t.Run("missing image maps to bad request", func(t *testing.T) {
		f := newHandlerFixture()
		f.submissions.err = fmt.Errorf("whiteboard image required for grading: %w", common.ErrValidation)

		rec := f.do(t, http.MethodPost, "/api/v1/submissions", validBody)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("grading failure maps to bad gateway", func(t *testing.T) {
		f := newHandlerFixture()
		f.submissions.err = fmt.Errorf("model timeout: %w", common.ErrGrading)

		rec := f.do(t, http.MethodPost, "/api/v1/submissions", validBody)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestCreateStudentHandler(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		f := newHandlerFixture()
		f.students.student = &models.Student{ID: "stu-1", Name: "Jamie"}

		rec := f.do(t, http.MethodPost, "/api/v1/students", models.CreateStudentRequest{Name: "Jamie"})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		f := newHandlerFixture()

		rec := f.do(t, http.MethodPost, "/api/v1/students", models.CreateStudentRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetAssignmentReportHandler(t *testing.T) {
	t.Run("returns the report", func(t *testing.T) {
		f := newHandlerFixture()
		f.reports.report = &models.AssignmentReport{
			Assignment: models.ReportAssignment{ID: "a1", Title: "Fractions quiz", TotalPoints: 40},
			Students:   []models.StudentReport{},
		}

		rec := f.do(t, http.MethodGet, "/api/v1/assignments/a1/report", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"students":[]`)
	})

	t.Run("unknown assignment is not found", func(t *testing.T) {
		f := newHandlerFixture()
		f.reports.err = fmt.Errorf("assignment missing: %w", common.ErrNotFound)

		rec := f.do(t, http.MethodGet, "/api/v1/assignments/missing/report", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHealthCheck(t *testing.T) {
	f := newHandlerFixture()

	rec := f.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}
