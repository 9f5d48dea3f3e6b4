package integration

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sketchwork/assessment-service/internal/common"
	"github.com/sketchwork/assessment-service/internal/models"
)

const generatorSystemPrompt = `You are an expert educator creating educational assignments.
Given a topic/description, generate:
1. Exactly 5 practice problems/questions for students to solve (appropriate difficulty, clear wording)
2. A grading rubric with 3-5 criteria to evaluate student work

The problems should be progressive in difficulty and test understanding of the topic.
Each problem should be solvable by showing work on a whiteboard.

Respond with a JSON object of the form:
{"problems": [{"question": "...", "hint": "..."}],
 "rubric": {"criteria": [{"name": "...", "description": "...", "points": 10,
   "levels": [{"name": "Excellent", "description": "...", "percentage": 100}]}],
  "total_points": 40}}
Each criterion must have exactly 4 levels named Excellent, Good, Developing and Beginning.`

// GeneratedProblemSet is the generator's structured output: the problems
// students will see and the rubric they will be graded against.
type GeneratedProblemSet struct {
	Problems []models.Problem `json:"problems"`
	Rubric   struct {
		Criteria    []models.Criterion `json:"criteria"`
		TotalPoints int                `json:"total_points"`
	} `json:"rubric"`
}

type GeneratorClient interface {
	Generate(ctx context.Context, title, description string) (*GeneratedProblemSet, error)
}

type generatorClient struct {
	llm    *OpenRouterClient
	logger zerolog.Logger
}

func NewGeneratorClient(llm *OpenRouterClient, logger zerolog.Logger) GeneratorClient {
	return &generatorClient{
		llm:    llm,
		logger: logger,
	}
}

func (c *generatorClient) Generate(ctx context.Context, title, description string) (*GeneratedProblemSet, error) {
	prompt := fmt.Sprintf(
		"Topic: %s\n\nDescription: %s\n\nGenerate 5 problems and a grading rubric for this assignment.",
		title, description,
	)

	content, err := c.llm.Complete(ctx, []chatMessage{
		{Role: "system", Content: generatorSystemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, common.ErrGeneration)
	}

	var generated GeneratedProblemSet
	if err := json.Unmarshal([]byte(content), &generated); err != nil {
		return nil, fmt.Errorf("malformed generator response: %v: %w", err, common.ErrGeneration)
	}

	if err := validateProblemSet(&generated); err != nil {
		return nil, fmt.Errorf("%v: %w", err, common.ErrGeneration)
	}

	c.logger.Info().
		Str("title", title).
		Int("criteria", len(generated.Rubric.Criteria)).
		Int("total_points", generated.Rubric.TotalPoints).
		Msg("Problem set generated")

	return &generated, nil
}

// validateProblemSet enforces the generator contract. A response violating
// the shape is rejected outright, never coerced into something usable.
func validateProblemSet(generated *GeneratedProblemSet) error {
	if len(generated.Problems) != models.ProblemsPerAssignment {
		return fmt.Errorf("expected %d problems, got %d", models.ProblemsPerAssignment, len(generated.Problems))
	}
	for i, problem := range generated.Problems {
		if problem.Question == "" {
			return fmt.Errorf("problem %d has no question", i)
		}
	}

	if n := len(generated.Rubric.Criteria); n < 3 || n > 5 {
		return fmt.Errorf("expected 3-5 criteria, got %d", n)
	}
	if generated.Rubric.TotalPoints <= 0 {
		return fmt.Errorf("total_points must be positive, got %d", generated.Rubric.TotalPoints)
	}

	for _, criterion := range generated.Rubric.Criteria {
		if criterion.Name == "" {
			return fmt.Errorf("criterion has no name")
		}
		if criterion.Points <= 0 {
			return fmt.Errorf("criterion %q has non-positive points", criterion.Name)
		}
		if len(criterion.Levels) != len(models.LevelNames) {
			return fmt.Errorf("criterion %q has %d levels, expected %d", criterion.Name, len(criterion.Levels), len(models.LevelNames))
		}

		seen := make(map[string]bool, len(models.LevelNames))
		for _, level := range criterion.Levels {
			seen[level.Name] = true
		}
		for _, name := range models.LevelNames {
			if !seen[name] {
				return fmt.Errorf("criterion %q is missing level %q", criterion.Name, name)
			}
		}
	}

	return nil
}
