package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDominant(t *testing.T) {
	scores := Scores{"happy": 0.81, "neutral": 0.12, "sad": 0.07}
	label, score, ok := Dominant(scores)
	require.True(t, ok)
	assert.Equal(t, "happy", label)
	assert.InDelta(t, 0.81, score, 1e-9)
}

func TestDominantEmpty(t *testing.T) {
	_, _, ok := Dominant(Scores{})
	assert.False(t, ok)
}

func TestDominantTieIsDeterministic(t *testing.T) {
	scores := Scores{"sad": 0.5, "angry": 0.5}
	label, _, ok := Dominant(scores)
	require.True(t, ok)
	assert.Equal(t, "angry", label)
}

func TestFERClientClassify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req struct {
			Image string `json:"image"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.Image)

		json.NewEncoder(w).Encode(map[string]any{
			"faces": []map[string]any{
				{"emotions": map[string]float64{"happy": 0.9, "neutral": 0.1}},
			},
		})
	}))
	defer srv.Close()

	client, err := NewFERClient(srv.URL, 5*time.Second, nil)
	require.NoError(t, err)

	faces, err := client.Classify(context.Background(), []byte("fake-image-bytes"), "image/png")
	require.NoError(t, err)
	require.Len(t, faces, 1)
	assert.InDelta(t, 0.9, faces[0].Emotions["happy"], 1e-9)
}

func TestFERClientClassifyNoFaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"faces": []any{}})
	}))
	defer srv.Close()

	client, err := NewFERClient(srv.URL, 5*time.Second, nil)
	require.NoError(t, err)

	faces, err := client.Classify(context.Background(), []byte("fake-image-bytes"), "image/png")
	require.NoError(t, err)
	assert.Empty(t, faces)
}

func TestFERClientClassifySidecarError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewFERClient(srv.URL, 5*time.Second, nil)
	require.NoError(t, err)

	_, err = client.Classify(context.Background(), []byte("fake-image-bytes"), "image/png")
	assert.Error(t, err)
}

func TestFERClientClassifyEmptyImage(t *testing.T) {
	client, err := NewFERClient("http://localhost:1", time.Second, nil)
	require.NoError(t, err)

	_, err = client.Classify(context.Background(), nil, "image/png")
	assert.Error(t, err)
}

func TestNewFERClientRequiresURL(t *testing.T) {
	_, err := NewFERClient("", time.Second, nil)
	assert.Error(t, err)
}
