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
	"github.com/sketchwork/assessment-service/pkg/sharecode"
)

type AssignmentService interface {
	CreateWithRubric(ctx context.Context, req *models.CreateAssignmentRequest) (*models.AssignmentWithRubric, error)
	GetDetails(ctx context.Context, id string) (*models.AssignmentWithRubric, error)
	LookupByShareCode(ctx context.Context, code string) (*models.Assignment, error)
	UpdateRubric(ctx context.Context, assignmentID string, req *models.UpdateRubricRequest) (*models.Rubric, error)
}

type assignmentService struct {
	assignmentRepo repository.AssignmentRepository
	rubricRepo     repository.RubricRepository
	generator      integration.GeneratorClient
	logger         zerolog.Logger
}

func NewAssignmentService(
	assignmentRepo repository.AssignmentRepository,
	rubricRepo repository.RubricRepository,
	generator integration.GeneratorClient,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentService{
		assignmentRepo: assignmentRepo,
		rubricRepo:     rubricRepo,
		generator:      generator,
		logger:         logger,
	}
}

// CreateWithRubric runs the assignment bootstrap sequence: persist the
// assignment with a locally generated share code, generate the problem set,
// persist the rubric. The first failure wins and nothing is rolled back; a
// generation or rubric failure leaves an assignment without a rubric, which
// stays queryable for operator recovery.
func (s *assignmentService) CreateWithRubric(ctx context.Context, req *models.CreateAssignmentRequest) (*models.AssignmentWithRubric, error) {
	assignment := &models.Assignment{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		TeacherID:   req.TeacherID,
		ShareCode:   sharecode.New(),
		CreatedAt:   time.Now(),
	}

	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", common.WrapStore(err))
	}

	generated, err := s.generator.Generate(ctx, req.Title, req.Description)
	if err != nil {
		s.logger.Error().Err(err).
			Str("assignment_id", assignment.ID).
			Msg("Problem set generation failed, assignment left without rubric")
		return nil, err
	}

	rubric := &models.Rubric{
		ID:           uuid.New().String(),
		AssignmentID: assignment.ID,
		Criteria:     generated.Rubric.Criteria,
		Problems:     generated.Problems,
		TotalPoints:  generated.Rubric.TotalPoints,
		UpdatedAt:    time.Now(),
	}

	if err := s.rubricRepo.Create(ctx, rubric); err != nil {
		s.logger.Error().Err(err).
			Str("assignment_id", assignment.ID).
			Msg("Rubric persistence failed, assignment left without rubric")
		return nil, fmt.Errorf("failed to create rubric: %w", common.WrapStore(err))
	}

	s.logger.Info().
		Str("assignment_id", assignment.ID).
		Str("share_code", assignment.ShareCode).
		Int("total_points", rubric.TotalPoints).
		Msg("Assignment created")

	return &models.AssignmentWithRubric{
		Assignment: *assignment,
		Rubric:     *rubric,
	}, nil
}

func (s *assignmentService) GetDetails(ctx context.Context, id string) (*models.AssignmentWithRubric, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", common.WrapStore(err))
	}
	if assignment == nil {
		return nil, fmt.Errorf("assignment %s: %w", id, common.ErrNotFound)
	}

	rubric, err := s.rubricRepo.GetByAssignmentID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get rubric: %w", common.WrapStore(err))
	}
	if rubric == nil {
		return nil, fmt.Errorf("rubric for assignment %s: %w", id, common.ErrNotFound)
	}

	return &models.AssignmentWithRubric{
		Assignment: *assignment,
		Rubric:     *rubric,
	}, nil
}

func (s *assignmentService) LookupByShareCode(ctx context.Context, code string) (*models.Assignment, error) {
	normalized := sharecode.Normalize(code)

	assignment, err := s.assignmentRepo.GetByShareCode(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to look up share code: %w", common.WrapStore(err))
	}
	if assignment == nil {
		return nil, fmt.Errorf("share code %s: %w", normalized, common.ErrNotFound)
	}

	return assignment, nil
}

func (s *assignmentService) UpdateRubric(ctx context.Context, assignmentID string, req *models.UpdateRubricRequest) (*models.Rubric, error) {
	existing, err := s.rubricRepo.GetByAssignmentID(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rubric: %w", common.WrapStore(err))
	}
	if existing == nil {
		return nil, fmt.Errorf("rubric for assignment %s: %w", assignmentID, common.ErrNotFound)
	}

	rubric, err := s.rubricRepo.Update(ctx, assignmentID, req.Criteria, req.TotalPoints, req.Problems)
	if err != nil {
		return nil, fmt.Errorf("failed to update rubric: %w", common.WrapStore(err))
	}

	s.logger.Info().
		Str("assignment_id", assignmentID).
		Int("total_points", rubric.TotalPoints).
		Msg("Rubric updated")

	return rubric, nil
}
