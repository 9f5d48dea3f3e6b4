package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sketchwork/assessment-service/internal/common"
	"github.com/sketchwork/assessment-service/internal/models"
	"github.com/sketchwork/assessment-service/internal/repository"
	"github.com/sketchwork/assessment-service/internal/service/integration"
)

type SubmissionService interface {
	SubmitAndGrade(ctx context.Context, req *models.CreateSubmissionRequest) (*models.SubmissionGradeResponse, error)
	RegradeSubmission(ctx context.Context, submissionID string) error
	GetByStudent(ctx context.Context, assignmentID, studentID string) ([]models.Submission, error)
}

type submissionService struct {
	submissionRepo repository.SubmissionRepository
	scoreRepo      repository.ScoreRepository
	assignmentRepo repository.AssignmentRepository
	rubricRepo     repository.RubricRepository
	grader         integration.GraderClient
	imageStore     repository.ImageStore
	events         integration.EventPublisher
	logger         zerolog.Logger
}

func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	scoreRepo repository.ScoreRepository,
	assignmentRepo repository.AssignmentRepository,
	rubricRepo repository.RubricRepository,
	grader integration.GraderClient,
	imageStore repository.ImageStore,
	events integration.EventPublisher,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissionRepo: submissionRepo,
		scoreRepo:      scoreRepo,
		assignmentRepo: assignmentRepo,
		rubricRepo:     rubricRepo,
		grader:         grader,
		imageStore:     imageStore,
		events:         events,
		logger:         logger,
	}
}

// SubmitAndGrade persists the attempt first, then grades it. A grading
// failure never takes the submission with it: retries can re-grade, but
// lost work cannot be re-captured. The only check that runs before the
// insert is the image-presence check, which needs no external call.
func (s *submissionService) SubmitAndGrade(ctx context.Context, req *models.CreateSubmissionRequest) (*models.SubmissionGradeResponse, error) {
	if req.Whiteboard.ImageURL == "" {
		return nil, fmt.Errorf("whiteboard image required for grading: %w", common.ErrValidation)
	}

	submission := &models.Submission{
		ID:           uuid.New().String(),
		AssignmentID: req.AssignmentID,
		StudentID:    req.StudentID,
		ProblemIndex: req.ProblemIndex,
		Whiteboard:   req.Whiteboard,
		SubmittedAt:  time.Now(),
	}

	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", common.WrapStore(err))
	}

	s.archiveImage(ctx, submission)

	score, rubric, err := s.gradePersisted(ctx, submission)
	if err != nil {
		s.publishRetry(ctx, submission, err)
		return nil, err
	}

	s.publishGraded(ctx, submission, score)

	return &models.SubmissionGradeResponse{
		SubmissionID: submission.ID,
		PointsEarned: score.PointsEarned,
		TotalPoints:  rubric.TotalPoints,
	}, nil
}

// RegradeSubmission is the retry worker's entry point: it re-runs the
// grading steps for a submission that persisted without a score. Already
// scored submissions are skipped, so redelivered events are harmless.
func (s *submissionService) RegradeSubmission(ctx context.Context, submissionID string) error {
	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return fmt.Errorf("failed to get submission: %w", common.WrapStore(err))
	}
	if submission == nil {
		return fmt.Errorf("submission %s: %w", submissionID, common.ErrNotFound)
	}

	existing, err := s.scoreRepo.GetBySubmissionID(ctx, submissionID)
	if err != nil {
		return fmt.Errorf("failed to check existing score: %w", common.WrapStore(err))
	}
	if existing != nil {
		s.logger.Debug().
			Str("submission_id", submissionID).
			Msg("Submission already scored, skipping regrade")
		return nil
	}

	if submission.Whiteboard.ImageURL == "" {
		return fmt.Errorf("submission %s has no whiteboard image: %w", submissionID, common.ErrValidation)
	}

	score, _, err := s.gradePersisted(ctx, submission)
	if err != nil {
		return err
	}

	s.publishGraded(ctx, submission, score)
	return nil
}

func (s *submissionService) GetByStudent(ctx context.Context, assignmentID, studentID string) ([]models.Submission, error) {
	exists, err := s.assignmentRepo.Exists(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check assignment existence: %w", common.WrapStore(err))
	}
	if !exists {
		return nil, fmt.Errorf("assignment %s: %w", assignmentID, common.ErrNotFound)
	}

	submissions, err := s.submissionRepo.GetByStudent(ctx, assignmentID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submissions: %w", common.WrapStore(err))
	}

	return submissions, nil
}

// gradePersisted runs the post-insert grading sequence: load assignment
// and rubric, resolve the problem text, call the grader, persist the
// score. The grader's total_earned is stored as-is.
func (s *submissionService) gradePersisted(ctx context.Context, submission *models.Submission) (*models.Score, *models.Rubric, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, submission.AssignmentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get assignment: %w", common.WrapStore(err))
	}
	if assignment == nil {
		return nil, nil, fmt.Errorf("assignment %s: %w", submission.AssignmentID, common.ErrNotFound)
	}

	rubric, err := s.rubricRepo.GetByAssignmentID(ctx, submission.AssignmentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get rubric: %w", common.WrapStore(err))
	}
	if rubric == nil {
		return nil, nil, fmt.Errorf("rubric for assignment %s: %w", submission.AssignmentID, common.ErrNotFound)
	}

	// An out-of-range problem slot falls back to the assignment's own
	// description rather than failing the attempt.
	problemText := assignment.Description
	if submission.ProblemIndex < len(rubric.Problems) {
		if q := rubric.Problems[submission.ProblemIndex].Question; q != "" {
			problemText = q
		}
	}

	grade, err := s.grader.Grade(ctx, rubric.Criteria, rubric.TotalPoints, problemText, submission.Whiteboard.ImageURL)
	if err != nil {
		return nil, nil, err
	}

	score := &models.Score{
		ID:           uuid.New().String(),
		SubmissionID: submission.ID,
		RubricID:     rubric.ID,
		PointsEarned: grade.TotalEarned,
		Feedback:     grade.OverallFeedback,
		GradedAt:     time.Now(),
	}

	if err := s.scoreRepo.Create(ctx, score); err != nil {
		return nil, nil, fmt.Errorf("failed to create score: %w", common.WrapStore(err))
	}

	s.logger.Info().
		Str("submission_id", submission.ID).
		Str("student_id", submission.StudentID).
		Int("problem_index", submission.ProblemIndex).
		Int("points_earned", score.PointsEarned).
		Msg("Submission scored")

	return score, rubric, nil
}

// archiveImage copies the rendered answer into the object store. Failures
// are logged and swallowed: the inline data URL is what the grader uses.
func (s *submissionService) archiveImage(ctx context.Context, submission *models.Submission) {
	if s.imageStore == nil {
		return
	}

	key, err := s.imageStore.PutAnswerImage(ctx, submission.ID, submission.Whiteboard.ImageURL)
	if err != nil {
		s.logger.Error().Err(err).
			Str("submission_id", submission.ID).
			Msg("Failed to archive answer image")
		return
	}

	if err := s.submissionRepo.UpdateImageKey(ctx, submission.ID, key); err != nil {
		s.logger.Error().Err(err).
			Str("submission_id", submission.ID).
			Msg("Failed to record answer image key")
	}
}

func (s *submissionService) publishGraded(ctx context.Context, submission *models.Submission, score *models.Score) {
	if s.events == nil {
		return
	}

	event := &models.SubmissionGradedEvent{
		SubmissionID: submission.ID,
		AssignmentID: submission.AssignmentID,
		StudentID:    submission.StudentID,
		ProblemIndex: submission.ProblemIndex,
		PointsEarned: score.PointsEarned,
		Timestamp:    time.Now().Unix(),
	}

	if err := s.events.PublishSubmissionGraded(ctx, event); err != nil {
		s.logger.Error().Err(err).Msg("Failed to publish submission graded event")
	}
}

func (s *submissionService) publishRetry(ctx context.Context, submission *models.Submission, cause error) {
	if s.events == nil {
		return
	}

	event := &models.GradingRetryEvent{
		SubmissionID: submission.ID,
		AssignmentID: submission.AssignmentID,
		Reason:       cause.Error(),
		Timestamp:    time.Now().Unix(),
	}

	if err := s.events.PublishGradingRetry(ctx, event); err != nil {
		s.logger.Error().Err(err).Msg("Failed to publish grading retry event")
	}
}
