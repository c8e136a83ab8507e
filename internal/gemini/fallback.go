package gemini

// SuggestionContent is the therapeutic payload returned for a detection,
// whether generated or taken from the fallback table.
type SuggestionContent struct {
	Message  string `json:"message"`
	Tip      string `json:"tip"`
	Activity string `json:"activity"`
	Sound    string `json:"sound"`
}

// Canned chat replies used when generation is unavailable or fails.
const (
	FallbackChatReplyUnconfigured = "I'm here to listen and support you. Sometimes it helps just to know someone cares about you."
	FallbackChatReplyError        = "I'm here for you. Your feelings are valid, and it's okay to take things one step at a time."
)

var fallbackSuggestions = map[string]SuggestionContent{
	"happy": {
		Message:  "Your positive energy is wonderful! Embrace this joyful moment and let it fill you with warmth.",
		Tip:      "Share your happiness with others - positive emotions are contagious in the best way.",
		Activity: "Try dancing to your favorite song or call someone you care about.",
		Sound:    "uplifting nature sounds",
	},
	"sad": {
		Message:  "It's completely okay to feel this way. Your emotions are valid, and you're not alone in this.",
		Tip:      "Allow yourself to feel without judgment. Sadness is a natural part of the human experience.",
		Activity: "Try gentle stretching, journaling, or listening to comforting music.",
		Sound:    "gentle rain",
	},
	"angry": {
		Message:  "Your feelings are valid. Let's channel this energy in a healthy, constructive way.",
		Tip:      "Physical movement can help release tension. Take deep breaths and count to ten.",
		Activity: "Try a brief walk outside, some deep breathing, or write down your thoughts.",
		Sound:    "flowing stream",
	},
	"fear": {
		Message:  "You're braver than you feel right now. Fear is temporary, but your strength is lasting.",
		Tip:      "Ground yourself by focusing on what you can control in this moment.",
		Activity: "Practice the 5-4-3-2-1 grounding technique: 5 things you see, 4 you hear, 3 you feel, 2 you smell, 1 you taste.",
		Sound:    "peaceful forest",
	},
	"surprise": {
		Message:  "Life is full of unexpected moments. You're handling this surprise with grace.",
		Tip:      "Take a moment to process this new information. Surprises can lead to growth.",
		Activity: "Take a few mindful breaths and reflect on how you're feeling right now.",
		Sound:    "gentle wind chimes",
	},
	"disgust": {
		Message:  "Your boundaries and values are important. It's okay to feel this way about things that don't align with you.",
		Tip:      "Distance yourself from what's bothering you if possible, and focus on what brings you peace.",
		Activity: "Engage in something that brings you joy or comfort - perhaps a hobby or time in nature.",
		Sound:    "mountain breeze",
	},
	"neutral": {
		Message:  "A balanced state is a gift. You're centered and ready for whatever comes your way.",
		Tip:      "This is a perfect time for planning, reflection, or trying something new.",
		Activity: "Consider setting a small, achievable goal for today or practicing gratitude.",
		Sound:    "ambient peace",
	},
}

// FallbackSuggestion returns the hardcoded therapeutic content for an
// emotion. Unrecognized labels get the neutral entry.
func FallbackSuggestion(emotion string) SuggestionContent {
	if s, ok := fallbackSuggestions[emotion]; ok {
		return s
	}
	return fallbackSuggestions["neutral"]
}
