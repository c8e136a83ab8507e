// Package vision defines the emotion classification capability and its
// implementations: decoding webcam frames and scoring facial emotions
// through an external inference backend.
package vision

import "context"

// Labels the classifier scores against, matching the FER model output.
var Labels = []string{"angry", "disgust", "fear", "happy", "sad", "surprise", "neutral"}

// Scores maps emotion labels to classifier confidence in [0,1].
type Scores map[string]float64

// Face is one detected face with its per-emotion score map.
type Face struct {
	Emotions Scores `json:"emotions"`
}

// Classifier scores facial emotions in an image. Implementations return one
// Face per detected face; an empty slice means no face was found.
type Classifier interface {
	Classify(ctx context.Context, imageData []byte, mimeType string) ([]Face, error)
}

// Dominant returns the label with the highest score and that score. The
// second return is false when the score map is empty.
func Dominant(scores Scores) (string, float64, bool) {
	var (
		best  string
		max   float64
		found bool
	)
	for label, score := range scores {
		if !found || score > max || (score == max && label < best) {
			best = label
			max = score
			found = true
		}
	}
	return best, max, found
}
