package cel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageContext struct {
	Title    string `json:"title"`
	Priority int    `json:"priority"`
}

func TestEvaluator_Match(t *testing.T) {
	evaluator := NewEvaluator()
	ctx := context.Background()

	tests := []struct {
		name       string
		expression string
		data       any
		want       bool
	}{
		{
			name:       "map field equality",
			expression: "data.person == 'you'",
			data:       map[string]interface{}{"person": "you"},
			want:       true,
		},
		{
			name:       "map field mismatch",
			expression: "data.person == 'me'",
			data:       map[string]interface{}{"person": "you"},
			want:       false,
		},
		{
			name:       "struct converted through json",
			expression: "data.priority > 2.0 && data.title.startsWith('Re')",
			data:       pageContext{Title: "Report", Priority: 3},
			want:       true,
		},
		{
			name:       "presence test on nil context",
			expression: "has(data.person)",
			data:       nil,
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evaluator.Match(ctx, tt.expression, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluator_MatchErrors(t *testing.T) {
	evaluator := NewEvaluator()
	ctx := context.Background()

	t.Run("non boolean result", func(t *testing.T) {
		_, err := evaluator.Match(ctx, "data.person", map[string]interface{}{"person": "you"})
		assert.Error(t, err)
	})

	t.Run("compile error", func(t *testing.T) {
		_, err := evaluator.Match(ctx, "data.person ==", nil)
		assert.Error(t, err)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := evaluator.Match(ctx, "data.missing == 1", map[string]interface{}{})
		assert.Error(t, err)
	})
}

func TestEvaluator_Cache(t *testing.T) {
	evaluator := NewEvaluator()
	data := map[string]interface{}{"n": 1}

	_, err := evaluator.Match(context.Background(), "data.n == 1", data)
	require.NoError(t, err)
	_, err = evaluator.Match(context.Background(), "data.n == 1", data)
	require.NoError(t, err)
	assert.Len(t, evaluator.cache, 1)
}

func TestEvaluator_ValidateExpression(t *testing.T) {
	evaluator := NewEvaluator()

	assert.NoError(t, evaluator.ValidateExpression("data.a == 1"))
	assert.NoError(t, evaluator.ValidateExpression("data.flag"))
	assert.Error(t, evaluator.ValidateExpression("'text'"))
	assert.Error(t, evaluator.ValidateExpression("data.a =="))
}
