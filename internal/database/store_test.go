package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) Store {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { CloseDB(db) })

	return NewStore(db, nil)
}

func TestSaveMoodSetsID(t *testing.T) {
	store := newTestStore(t)

	mood := &MoodObservation{Emotion: "happy", Confidence: 0.92, SessionID: "s1"}
	require.NoError(t, store.SaveMood(context.Background(), mood))
	assert.NotZero(t, mood.ID)
	assert.False(t, mood.Timestamp.IsZero())
}

func TestSaveMoodValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.Error(t, store.SaveMood(ctx, nil))
	assert.Error(t, store.SaveMood(ctx, &MoodObservation{Confidence: 0.5, SessionID: "s1"}))
	assert.Error(t, store.SaveMood(ctx, &MoodObservation{Emotion: "happy", Confidence: 1.5, SessionID: "s1"}))
	assert.Error(t, store.SaveMood(ctx, &MoodObservation{Emotion: "happy", Confidence: 0.5}))
}

func TestMoodHistoryOrderAndLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, emotion := range []string{"sad", "neutral", "happy"} {
		mood := &MoodObservation{
			Emotion:    emotion,
			Confidence: 0.5,
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
			SessionID:  "s1",
		}
		require.NoError(t, store.SaveMood(ctx, mood))
	}
	// Different session must not leak into s1's history.
	require.NoError(t, store.SaveMood(ctx, &MoodObservation{Emotion: "angry", Confidence: 0.7, SessionID: "s2"}))

	history, err := store.MoodHistory(ctx, "s1", 10)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "happy", history[0].Emotion)
	assert.Equal(t, "neutral", history[1].Emotion)
	assert.Equal(t, "sad", history[2].Emotion)

	limited, err := store.MoodHistory(ctx, "s1", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "happy", limited[0].Emotion)
}

func TestSaveChatExchange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	userTurn := &ChatTurn{
		Message:   "hello",
		Sender:    SenderUser,
		Mood:      sql.NullString{String: "sad", Valid: true},
		SessionID: "s1",
	}
	therapistTurn := &ChatTurn{
		Message:   "I'm here for you.",
		Sender:    SenderTherapist,
		Mood:      sql.NullString{String: "sad", Valid: true},
		SessionID: "s1",
	}
	require.NoError(t, store.SaveChatExchange(ctx, userTurn, therapistTurn))
	assert.NotZero(t, userTurn.ID)
	assert.NotZero(t, therapistTurn.ID)

	history, err := store.ChatHistory(ctx, "s1", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, SenderUser, history[0].Sender)
	assert.Equal(t, SenderTherapist, history[1].Sender)
	assert.Equal(t, "sad", history[0].Mood.String)
}

func TestSaveChatExchangeValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	valid := &ChatTurn{Message: "hi", Sender: SenderUser, SessionID: "s1"}

	assert.Error(t, store.SaveChatExchange(ctx, nil, valid))
	assert.Error(t, store.SaveChatExchange(ctx, valid, &ChatTurn{Message: "x", Sender: "bot", SessionID: "s1"}))
	assert.Error(t, store.SaveChatExchange(ctx, valid, &ChatTurn{Sender: SenderTherapist, SessionID: "s1"}))
}

func TestSaveSuggestionWithMoodLink(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mood := &MoodObservation{Emotion: "fear", Confidence: 0.6, SessionID: "s1"}
	require.NoError(t, store.SaveMood(ctx, mood))

	suggestion := &Suggestion{
		MoodID:   sql.NullInt64{Int64: int64(mood.ID), Valid: true},
		Emotion:  "fear",
		Message:  "You're braver than you feel right now.",
		Tip:      "Ground yourself.",
		Activity: "Try the 5-4-3-2-1 technique.",
		Sound:    "peaceful forest",
	}
	require.NoError(t, store.SaveSuggestion(ctx, suggestion))
	assert.NotZero(t, suggestion.ID)
}

func TestRunMaintenance(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.RunMaintenance(context.Background()))
}
