package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFallbackSuggestionKnownEmotions(t *testing.T) {
	for _, emotion := range []string{"happy", "sad", "angry", "fear", "surprise", "disgust", "neutral"} {
		s := FallbackSuggestion(emotion)
		assert.NotEmpty(t, s.Message, "emotion %s", emotion)
		assert.NotEmpty(t, s.Tip, "emotion %s", emotion)
		assert.NotEmpty(t, s.Activity, "emotion %s", emotion)
		assert.NotEmpty(t, s.Sound, "emotion %s", emotion)
	}
}

func TestFallbackSuggestionUnknownEmotionReturnsNeutral(t *testing.T) {
	assert.Equal(t, FallbackSuggestion("neutral"), FallbackSuggestion("melancholic"))
	assert.Equal(t, FallbackSuggestion("neutral"), FallbackSuggestion(""))
}
