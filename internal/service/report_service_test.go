package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sketchwork/assessment-service/internal/common"
	"github.com/sketchwork/assessment-service/internal/models"
)

func sub(studentID string, problemIndex int, submittedAt time.Time) models.Submission {
	return models.Submission{
		ID:           studentID + "-" + time.Now().String(),
		AssignmentID: "a1",
		StudentID:    studentID,
		ProblemIndex: problemIndex,
		SubmittedAt:  submittedAt,
	}
}

func TestBuildStudentReports(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("empty input yields empty slice", func(t *testing.T) {
		got := buildStudentReports(nil, nil, 40)
		require.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("distinct problems counted once", func(t *testing.T) {
		subs := []models.Submission{
			sub("stu-1", 0, base),
			sub("stu-1", 0, base.Add(time.Minute)),
			sub("stu-1", 2, base.Add(2*time.Minute)),
		}

		got := buildStudentReports(subs, nil, 40)
		require.Len(t, got, 1)
		assert.Equal(t, 2, got[0].ProblemsCompleted)
		assert.Equal(t, models.ProblemsPerAssignment, got[0].TotalProblems)
	})

	t.Run("every score is summed including regrades", func(t *testing.T) {
		subs := []models.Submission{
			sub("stu-1", 0, base),
			sub("stu-1", 0, base.Add(time.Minute)),
			sub("stu-1", 1, base.Add(2*time.Minute)),
		}
		scores := []models.ScoreWithSubmission{
			{Score: models.Score{PointsEarned: 3}, StudentID: "stu-1", ProblemIndex: 0},
			{Score: models.Score{PointsEarned: 5}, StudentID: "stu-1", ProblemIndex: 0},
			{Score: models.Score{PointsEarned: 4}, StudentID: "stu-1", ProblemIndex: 1},
		}

		got := buildStudentReports(subs, scores, 40)
		require.Len(t, got, 1)
		assert.Equal(t, 12, got[0].TotalScore)
	})

	t.Run("students keep first submission order", func(t *testing.T) {
		subs := []models.Submission{
			sub("stu-b", 0, base),
			sub("stu-a", 0, base.Add(time.Minute)),
			sub("stu-b", 1, base.Add(2*time.Minute)),
		}

		got := buildStudentReports(subs, nil, 40)
		require.Len(t, got, 2)
		assert.Equal(t, "stu-b", got[0].ID)
		assert.Equal(t, "stu-a", got[1].ID)
	})

	t.Run("submitted_at is the latest attempt", func(t *testing.T) {
		latest := base.Add(3 * time.Hour)
		subs := []models.Submission{
			sub("stu-1", 0, base),
			sub("stu-1", 1, latest),
			sub("stu-1", 2, base.Add(time.Hour)),
		}

		got := buildStudentReports(subs, nil, 40)
		require.Len(t, got, 1)
		require.NotNil(t, got[0].SubmittedAt)
		assert.True(t, got[0].SubmittedAt.Equal(latest))
	})

	t.Run("max score scales with rubric total", func(t *testing.T) {
		subs := []models.Submission{sub("stu-1", 0, base)}

		got := buildStudentReports(subs, nil, 40)
		require.Len(t, got, 1)
		assert.Equal(t, 200, got[0].MaxScore)
	})

	t.Run("display name uses short id prefix", func(t *testing.T) {
		subs := []models.Submission{sub("4f9d12aa-0000-0000-0000-000000000000", 0, base)}

		got := buildStudentReports(subs, nil, 40)
		require.Len(t, got, 1)
		assert.Equal(t, "Student 4f9d12", got[0].Name)
	})
}

func TestGetAssignmentReport(t *testing.T) {
	log := zerolog.Nop()
	assignment := &models.Assignment{ID: "a1", Title: "Fractions quiz"}
	rubric := &models.Rubric{ID: "r1", AssignmentID: "a1", TotalPoints: 40}

	t.Run("no submissions yields empty students", func(t *testing.T) {
		svc := NewReportService(
			&fakeAssignmentRepo{byID: assignment},
			&fakeRubricRepo{rubric: rubric},
			&fakeSubmissionRepo{},
			&fakeScoreRepo{},
			log,
		)

		report, err := svc.GetAssignmentReport(context.Background(), "a1")
		require.NoError(t, err)
		assert.Equal(t, "a1", report.Assignment.ID)
		assert.Equal(t, 40, report.Assignment.TotalPoints)
		assert.Empty(t, report.Students)
	})

	t.Run("unknown assignment is not found", func(t *testing.T) {
		svc := NewReportService(
			&fakeAssignmentRepo{},
			&fakeRubricRepo{},
			&fakeSubmissionRepo{},
			&fakeScoreRepo{},
			log,
		)

		_, err := svc.GetAssignmentReport(context.Background(), "missing")
		require.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("assignment without rubric is not found", func(t *testing.T) {
		svc := NewReportService(
			&fakeAssignmentRepo{byID: assignment},
			&fakeRubricRepo{},
			&fakeSubmissionRepo{},
			&fakeScoreRepo{},
			log,
		)

		_, err := svc.GetAssignmentReport(context.Background(), "a1")
		require.ErrorIs(t, err, common.ErrNotFound)
	})
}
