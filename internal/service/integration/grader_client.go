package integration

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sketchwork/assessment-service/internal/common"
	"github.com/sketchwork/assessment-service/internal/models"
)

const graderSystemPrompt = `You are grading a student's work against a rubric.
Analyze the whiteboard submission and score each criterion.
Be fair but rigorous. Students do NOT see your feedback.

Respond with a JSON object of the form:
{"scores": [{"criterion_name": "...", "level": "Excellent", "points_earned": 10, "reasoning": "..."}],
 "total_earned": 32, "overall_feedback": "..."}
The level must be one of Excellent, Good, Developing or Beginning.`

type CriterionScore struct {
	CriterionName string  `json:"criterion_name"`
	Level         string  `json:"level"`
	PointsEarned  float64 `json:"points_earned"`
	Reasoning     string  `json:"reasoning"`
}

// GradeResult is the grader's structured verdict. TotalEarned is the
// grader's own aggregate and is the number stored downstream; the
// per-criterion scores are detail, not the source of truth.
type GradeResult struct {
	Scores          []CriterionScore `json:"scores"`
	TotalEarned     int              `json:"total_earned"`
	OverallFeedback string           `json:"overall_feedback"`
}

type GraderClient interface {
	Grade(ctx context.Context, criteria []models.Criterion, totalPoints int, problemText, imageURL string) (*GradeResult, error)
}

type graderClient struct {
	llm    *OpenRouterClient
	logger zerolog.Logger
}

func NewGraderClient(llm *OpenRouterClient, logger zerolog.Logger) GraderClient {
	return &graderClient{
		llm:    llm,
		logger: logger,
	}
}

func (c *graderClient) Grade(ctx context.Context, criteria []models.Criterion, totalPoints int, problemText, imageURL string) (*GradeResult, error) {
	rubricJSON, err := json.MarshalIndent(map[string]interface{}{
		"criteria":     criteria,
		"total_points": totalPoints,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rubric: %w", err)
	}

	text := fmt.Sprintf(
		"## Rubric\n%s\n\n## Problem\n%s\n\nGrade this student's whiteboard submission.",
		rubricJSON, problemText,
	)

	content, err := c.llm.Complete(ctx, []chatMessage{
		{Role: "system", Content: graderSystemPrompt},
		{Role: "user", Content: []contentPart{
			{Type: "text", Text: text},
			{Type: "image_url", ImageURL: &imageRef{URL: imageURL}},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, common.ErrGrading)
	}

	var result GradeResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("malformed grader response: %v: %w", err, common.ErrGrading)
	}

	if err := validateGradeResult(&result); err != nil {
		return nil, fmt.Errorf("%v: %w", err, common.ErrGrading)
	}

	c.logger.Info().
		Int("total_earned", result.TotalEarned).
		Int("criteria_scored", len(result.Scores)).
		Msg("Submission graded")

	return &result, nil
}

func validateGradeResult(result *GradeResult) error {
	if result.TotalEarned < 0 {
		return fmt.Errorf("total_earned must not be negative, got %d", result.TotalEarned)
	}
	if len(result.Scores) == 0 {
		return fmt.Errorf("grader returned no per-criterion scores")
	}

	for _, score := range result.Scores {
		valid := false
		for _, name := range models.LevelNames {
			if score.Level == name {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("criterion %q scored at unknown level %q", score.CriterionName, score.Level)
		}
	}

	return nil
}
