package service

import (
	"context"

	"github.com/sketchwork/assessment-service/internal/models"
	"github.com/sketchwork/assessment-service/internal/service/integration"
)

// Hand-rolled fakes shared by the service tests. Each one records calls
// so tests can assert on ordering-sensitive behavior.

type fakeAssignmentRepo struct {
	byID      *models.Assignment
	byCode    *models.Assignment
	createErr error
	created   []*models.Assignment
	codeQuery string
	existsVal bool
	existsErr error
}

func (f *fakeAssignmentRepo) Create(_ context.Context, a *models.Assignment) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, a)
	return nil
}

func (f *fakeAssignmentRepo) GetByID(_ context.Context, id string) (*models.Assignment, error) {
	if f.byID != nil && f.byID.ID == id {
		return f.byID, nil
	}
	return nil, nil
}

func (f *fakeAssignmentRepo) GetByShareCode(_ context.Context, code string) (*models.Assignment, error) {
	f.codeQuery = code
	return f.byCode, nil
}

func (f *fakeAssignmentRepo) Exists(_ context.Context, _ string) (bool, error) {
	return f.existsVal, f.existsErr
}

type fakeRubricRepo struct {
	rubric    *models.Rubric
	createErr error
	created   []*models.Rubric
	updated   *models.Rubric
}

func (f *fakeRubricRepo) Create(_ context.Context, r *models.Rubric) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, r)
	return nil
}

func (f *fakeRubricRepo) GetByAssignmentID(_ context.Context, _ string) (*models.Rubric, error) {
	return f.rubric, nil
}

func (f *fakeRubricRepo) Update(_ context.Context, assignmentID string, criteria []models.Criterion, totalPoints int, problems *[]models.Problem) (*models.Rubric, error) {
	updated := &models.Rubric{
		AssignmentID: assignmentID,
		Criteria:     criteria,
		TotalPoints:  totalPoints,
	}
	if f.rubric != nil {
		updated.ID = f.rubric.ID
		updated.Problems = f.rubric.Problems
	}
	if problems != nil {
		updated.Problems = *problems
	}
	f.updated = updated
	return updated, nil
}

type fakeStudentRepo struct {
	createErr error
	created   []*models.Student
}

func (f *fakeStudentRepo) Create(_ context.Context, s *models.Student) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, s)
	return nil
}

type fakeSubmissionRepo struct {
	byID         *models.Submission
	byAssignment []models.Submission
	byStudent    []models.Submission
	createErr    error
	created      []*models.Submission
	imageKeys    map[string]string
}

func (f *fakeSubmissionRepo) Create(_ context.Context, s *models.Submission) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, s)
	return nil
}

func (f *fakeSubmissionRepo) GetByID(_ context.Context, id string) (*models.Submission, error) {
	if f.byID != nil && f.byID.ID == id {
		return f.byID, nil
	}
	return nil, nil
}

func (f *fakeSubmissionRepo) GetByAssignmentID(_ context.Context, _ string) ([]models.Submission, error) {
	return f.byAssignment, nil
}

func (f *fakeSubmissionRepo) GetByStudent(_ context.Context, _, _ string) ([]models.Submission, error) {
	return f.byStudent, nil
}

func (f *fakeSubmissionRepo) UpdateImageKey(_ context.Context, id, imageKey string) error {
	if f.imageKeys == nil {
		f.imageKeys = make(map[string]string)
	}
	f.imageKeys[id] = imageKey
	return nil
}

type fakeScoreRepo struct {
	bySubmission *models.Score
	byAssignment []models.ScoreWithSubmission
	createErr    error
	created      []*models.Score
}

func (f *fakeScoreRepo) Create(_ context.Context, s *models.Score) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, s)
	return nil
}

func (f *fakeScoreRepo) GetBySubmissionID(_ context.Context, _ string) (*models.Score, error) {
	return f.bySubmission, nil
}

func (f *fakeScoreRepo) GetByAssignmentID(_ context.Context, _ string) ([]models.ScoreWithSubmission, error) {
	return f.byAssignment, nil
}

type fakeGenerator struct {
	result *integration.GeneratedProblemSet
	err    error
	calls  int
}

func (f *fakeGenerator) Generate(_ context.Context, _, _ string) (*integration.GeneratedProblemSet, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeGrader struct {
	result      *integration.GradeResult
	err         error
	calls       int
	problemText string
	imageURL    string
}

func (f *fakeGrader) Grade(_ context.Context, _ []models.Criterion, _ int, problemText, imageURL string) (*integration.GradeResult, error) {
	f.calls++
	f.problemText = problemText
	f.imageURL = imageURL
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeImageStore struct {
	key   string
	err   error
	calls int
}

func (f *fakeImageStore) PutAnswerImage(_ context.Context, _, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.key, nil
}

type fakePublisher struct {
	graded  []*models.SubmissionGradedEvent
	retries []*models.GradingRetryEvent
}

func (f *fakePublisher) PublishSubmissionGraded(_ context.Context, e *models.SubmissionGradedEvent) error {
	f.graded = append(f.graded, e)
	return nil
}

func (f *fakePublisher) PublishGradingRetry(_ context.Context, e *models.GradingRetryEvent) error {
	f.retries = append(f.retries, e)
	return nil
}

func (f *fakePublisher) Close() error { return nil }
