package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sketchwork/assessment-service/internal/common"
	"github.com/sketchwork/assessment-service/internal/models"
)

func gradeResultJSON(totalEarned int, level string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"scores": []map[string]interface{}{
			{"criterion_name": "Accuracy", "level": level, "points_earned": 8, "reasoning": "Mostly correct"},
		},
		"total_earned":     totalEarned,
		"overall_feedback": "Solid work",
	})
	return string(body)
}

var gradingCriteria = []models.Criterion{
	{Name: "Accuracy", Points: 10},
	{Name: "Reasoning", Points: 10},
}

func TestGrade(t *testing.T) {
	t.Run("parses a conforming verdict", func(t *testing.T) {
		var captured []byte
		server := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
			var req completionRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			captured, _ = json.Marshal(req.Messages)
			respondWithContent(t, w, gradeResultJSON(32, "Good"))
		})

		client := NewGraderClient(testClient(server.URL, 0), zerolog.Nop())

		result, err := client.Grade(
			context.Background(),
			gradingCriteria,
			40,
			"Problem 1",
			"data:image/png;base64,aGVsbG8=",
		)
		require.NoError(t, err)
		assert.Equal(t, 32, result.TotalEarned)
		assert.Equal(t, "Solid work", result.OverallFeedback)
		require.Len(t, result.Scores, 1)
		assert.Equal(t, "Good", result.Scores[0].Level)

		// The submission image rides along as a multimodal part.
		assert.Contains(t, string(captured), "image_url")
		assert.Contains(t, string(captured), "data:image/png;base64,aGVsbG8=")
		assert.Contains(t, string(captured), "Problem 1")
	})

	t.Run("rejects an unknown level", func(t *testing.T) {
		server := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
			respondWithContent(t, w, gradeResultJSON(32, "Passable"))
		})

		client := NewGraderClient(testClient(server.URL, 0), zerolog.Nop())

		_, err := client.Grade(context.Background(), gradingCriteria, 40, "Problem 1", "data:image/png;base64,aGVsbG8=")
		require.ErrorIs(t, err, common.ErrGrading)
		assert.Contains(t, err.Error(), "unknown level")
	})

	t.Run("rejects non-JSON content", func(t *testing.T) {
		server := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
			respondWithContent(t, w, "The student did well overall.")
		})

		client := NewGraderClient(testClient(server.URL, 0), zerolog.Nop())

		_, err := client.Grade(context.Background(), gradingCriteria, 40, "Problem 1", "data:image/png;base64,aGVsbG8=")
		require.ErrorIs(t, err, common.ErrGrading)
	})

	t.Run("transport failures carry the grading kind", func(t *testing.T) {
		server := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream overloaded", http.StatusInternalServerError)
		})

		client := NewGraderClient(testClient(server.URL, 0), zerolog.Nop())

		_, err := client.Grade(context.Background(), gradingCriteria, 40, "Problem 1", "data:image/png;base64,aGVsbG8=")
		require.ErrorIs(t, err, common.ErrGrading)
	})
}

func TestValidateGradeResult(t *testing.T) {
	tests := []struct {
		name    string
		result  GradeResult
		wantErr string
	}{
		{
			name: "valid",
			result: GradeResult{
				Scores:      []CriterionScore{{CriterionName: "Accuracy", Level: "Excellent", PointsEarned: 10}},
				TotalEarned: 10,
			},
		},
		{
			name:    "negative total",
			result:  GradeResult{TotalEarned: -1},
			wantErr: "must not be negative",
		},
		{
			name:    "no scores",
			result:  GradeResult{TotalEarned: 10},
			wantErr: "no per-criterion scores",
		},
		{
			name: "unknown level",
			result: GradeResult{
				Scores:      []CriterionScore{{CriterionName: "Accuracy", Level: "Mediocre"}},
				TotalEarned: 10,
			},
			wantErr: "unknown level",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateGradeResult(&tt.result)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
