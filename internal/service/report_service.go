package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sketchwork/assessment-service/internal/common"
	"github.com/sketchwork/assessment-service/internal/models"
	"github.com/sketchwork/assessment-service/internal/repository"
)

type ReportService interface {
	GetAssignmentReport(ctx context.Context, assignmentID string) (*models.AssignmentReport, error)
}

type reportService struct {
	assignmentRepo repository.AssignmentRepository
	rubricRepo     repository.RubricRepository
	submissionRepo repository.SubmissionRepository
	scoreRepo      repository.ScoreRepository
	logger         zerolog.Logger
}

func NewReportService(
	assignmentRepo repository.AssignmentRepository,
	rubricRepo repository.RubricRepository,
	submissionRepo repository.SubmissionRepository,
	scoreRepo repository.ScoreRepository,
	logger zerolog.Logger,
) ReportService {
	return &reportService{
		assignmentRepo: assignmentRepo,
		rubricRepo:     rubricRepo,
		submissionRepo: submissionRepo,
		scoreRepo:      scoreRepo,
		logger:         logger,
	}
}

// GetAssignmentReport fetches the raw records and folds them in memory; it
// makes no external calls beyond the store reads.
func (s *reportService) GetAssignmentReport(ctx context.Context, assignmentID string) (*models.AssignmentReport, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", common.WrapStore(err))
	}
	if assignment == nil {
		return nil, fmt.Errorf("assignment %s: %w", assignmentID, common.ErrNotFound)
	}

	rubric, err := s.rubricRepo.GetByAssignmentID(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rubric: %w", common.WrapStore(err))
	}
	if rubric == nil {
		return nil, fmt.Errorf("rubric for assignment %s: %w", assignmentID, common.ErrNotFound)
	}

	submissions, err := s.submissionRepo.GetByAssignmentID(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submissions: %w", common.WrapStore(err))
	}

	scores, err := s.scoreRepo.GetByAssignmentID(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get scores: %w", common.WrapStore(err))
	}

	return &models.AssignmentReport{
		Assignment: models.ReportAssignment{
			ID:          assignment.ID,
			Title:       assignment.Title,
			TotalPoints: rubric.TotalPoints,
		},
		Students: buildStudentReports(submissions, scores, rubric.TotalPoints),
	}, nil
}

type studentProgress struct {
	problems   map[int]bool
	totalScore int
	lastSeen   int // index into summaries, for score attribution
}

// buildStudentReports folds submissions and scores into one summary per
// student. Progress counts distinct problem indices, not submission count;
// total_score sums every score, so a twice-graded problem counts twice.
// Students appear in first-submission order.
func buildStudentReports(submissions []models.Submission, scores []models.ScoreWithSubmission, totalPoints int) []models.StudentReport {
	summaries := []models.StudentReport{}
	progress := make(map[string]*studentProgress)

	for _, sub := range submissions {
		entry, ok := progress[sub.StudentID]
		if !ok {
			submittedAt := sub.SubmittedAt
			summaries = append(summaries, models.StudentReport{
				ID: sub.StudentID,
				// Display name is synthesized; the fold never loads
				// Student rows.
				Name:          "Student " + shortID(sub.StudentID),
				TotalProblems: models.ProblemsPerAssignment,
				MaxScore:      totalPoints * models.ProblemsPerAssignment,
				SubmittedAt:   &submittedAt,
			})
			entry = &studentProgress{
				problems: make(map[int]bool),
				lastSeen: len(summaries) - 1,
			}
			progress[sub.StudentID] = entry
		}

		entry.problems[sub.ProblemIndex] = true

		summary := &summaries[entry.lastSeen]
		if sub.SubmittedAt.After(*summary.SubmittedAt) {
			submittedAt := sub.SubmittedAt
			summary.SubmittedAt = &submittedAt
		}
	}

	for _, score := range scores {
		if entry, ok := progress[score.StudentID]; ok {
			entry.totalScore += score.PointsEarned
		}
	}

	for _, entry := range progress {
		summary := &summaries[entry.lastSeen]
		summary.ProblemsCompleted = len(entry.problems)
		summary.TotalScore = entry.totalScore
	}

	return summaries
}

func shortID(id string) string {
	if len(id) > 6 {
		return id[:6]
	}
	return id
}
