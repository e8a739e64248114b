package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/pocketgenie/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleContent = "We met with the vendor. Pricing is settled. Contract goes to legal on Monday. " +
	"Kickoff is planned for March. Budget needs final sign-off."

func TestSummarize_ModelOutput(t *testing.T) {
	completer := mock.NewMockCompleter()
	completer.Response = "Vendor deal is nearly done.\n- Pricing settled\n• Legal review Monday\n* Kickoff in March\nnot a bullet"

	s, err := NewSummarizer(completer)
	require.NoError(t, err)

	result, err := s.Summarize(context.Background(), sampleContent, 5)
	require.NoError(t, err)

	assert.False(t, result.Degraded)
	assert.Equal(t, "Vendor deal is nearly done.", result.Summary)
	assert.Equal(t, []string{"Pricing settled", "Legal review Monday", "Kickoff in March"}, result.BulletPoints)

	reqs := completer.Requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].Prompt, sampleContent)
	assert.Contains(t, reqs[0].Prompt, "5 short bullet points")
}

func TestSummarize_Fallback(t *testing.T) {
	completer := mock.NewMockCompleter()
	completer.Err = errors.New("connection refused")

	s, err := NewSummarizer(completer)
	require.NoError(t, err)

	result, err := s.Summarize(context.Background(), sampleContent, 2)
	require.NoError(t, err)

	assert.True(t, result.Degraded)
	assert.Equal(t, "We met with the vendor. Pricing is settled.", result.Summary)
	assert.Equal(t, []string{"Contract goes to legal on Monday", "Kickoff is planned for March"}, result.BulletPoints)
}

func TestSummarize_NilCompleter(t *testing.T) {
	s, err := NewSummarizer(nil)
	require.NoError(t, err)

	result, err := s.Summarize(context.Background(), "Single sentence only", 0)
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Equal(t, "Single sentence only.", result.Summary)
	// no sentences left for bullets: fall back to content chunks
	assert.Equal(t, []string{"Single sentence only"}, result.BulletPoints)
}

func TestSummarize_BlankModelOutput(t *testing.T) {
	completer := mock.NewMockCompleter()
	completer.Response = "   "

	s, err := NewSummarizer(completer)
	require.NoError(t, err)

	result, err := s.Summarize(context.Background(), sampleContent, 3)
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Len(t, result.BulletPoints, 3)
}

func TestSummarize_InvalidInput(t *testing.T) {
	s, err := NewSummarizer(mock.NewMockCompleter())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Summarize(ctx, "  \n", 3)
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = s.Summarize(ctx, "text", 11)
	assert.ErrorIs(t, err, ErrInvalidMaxPoints)

	_, err = s.Summarize(ctx, "text", -1)
	assert.ErrorIs(t, err, ErrInvalidMaxPoints)
}

func TestParse(t *testing.T) {
	t.Run("chunks when no bullets", func(t *testing.T) {
		content := strings.Repeat("a", 650)
		result := Parse("Only a summary line", content, 10)

		assert.Equal(t, "Only a summary line", result.Summary)
		require.Len(t, result.BulletPoints, 5)
		for _, b := range result.BulletPoints {
			assert.Len(t, b, 100)
		}
	})

	t.Run("caps bullets", func(t *testing.T) {
		result := Parse("s\n- a\n- b\n- c", "content", 2)
		assert.Equal(t, []string{"a", "b"}, result.BulletPoints)
	})

	t.Run("blank summary line uses content", func(t *testing.T) {
		result := Parse("", "the content", 5)
		assert.Equal(t, "the content", result.Summary)
		assert.Equal(t, []string{"the content"}, result.BulletPoints)
	})

	t.Run("chunking counts characters not bytes", func(t *testing.T) {
		content := strings.Repeat("é", 150)
		result := Parse("summary", content, 5)
		require.Len(t, result.BulletPoints, 2)
		assert.Equal(t, 100, len([]rune(result.BulletPoints[0])))
		assert.Equal(t, 50, len([]rune(result.BulletPoints[1])))
	})
}

func TestOptions(t *testing.T) {
	_, err := NewSummarizer(nil, WithMaxTokens(0))
	assert.Error(t, err)

	_, err = NewSummarizer(nil, WithTemperature(3))
	assert.Error(t, err)

	_, err = NewSummarizer(nil, WithLogger(nil))
	assert.Error(t, err)

	s, err := NewSummarizer(nil, WithMaxTokens(50), WithTemperature(0.1))
	require.NoError(t, err)
	assert.Equal(t, 50, s.maxTokens)
}
