package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// History read defaults and cap. The handler layer passes caller-supplied
// limits through; the store bounds them.
const (
	DefaultMoodHistoryLimit = 50
	DefaultChatHistoryLimit = 100
	maxHistoryLimit         = 500
)

// Store defines the data access interface over the three history tables.
// All records are append-only; there are no update or delete paths.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveMood inserts a mood observation and sets its generated ID.
	SaveMood(ctx context.Context, mood *MoodObservation) error

	// SaveSuggestion inserts a suggestion record and sets its generated ID.
	SaveSuggestion(ctx context.Context, suggestion *Suggestion) error

	// SaveChatExchange inserts the user turn and the therapist turn of one
	// chat call in a single transaction.
	SaveChatExchange(ctx context.Context, userTurn, therapistTurn *ChatTurn) error

	// MoodHistory returns up to limit observations for the session, newest
	// first.
	MoodHistory(ctx context.Context, sessionID string, limit int) ([]MoodObservation, error)

	// ChatHistory returns up to limit turns for the session, oldest first.
	ChatHistory(ctx context.Context, sessionID string, limit int) ([]ChatTurn, error)

	// RunMaintenance performs database maintenance tasks (VACUUM).
	RunMaintenance(ctx context.Context) error
}

// sqlxStore implements Store using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by the given sqlx connection pool.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) SaveMood(ctx context.Context, mood *MoodObservation) error {
	if mood == nil {
		return fmt.Errorf("cannot save nil mood observation")
	}
	if mood.Emotion == "" {
		return fmt.Errorf("mood observation must have an emotion label")
	}
	if mood.Confidence < 0 || mood.Confidence > 1 {
		return fmt.Errorf("mood confidence %f out of range [0,1]", mood.Confidence)
	}
	if mood.SessionID == "" {
		return fmt.Errorf("mood observation must have a session id")
	}

	if mood.Timestamp.IsZero() {
		mood.Timestamp = time.Now().UTC()
	}

	query := `
        INSERT INTO mood_history (emotion, confidence, timestamp, session_id)
        VALUES (:emotion, :confidence, :timestamp, :session_id);
    `

	result, err := s.db.NamedExecContext(ctx, query, mood)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving mood observation",
			"session_id", mood.SessionID, "emotion", mood.Emotion, "error", err)
		return fmt.Errorf("failed to save mood observation (session %s): %w", mood.SessionID, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		mood.ID = uint(id)
	} else {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID for mood observation",
			"session_id", mood.SessionID, "error", err)
	}

	s.logger.DebugContext(ctx, "Mood observation saved",
		"session_id", mood.SessionID, "emotion", mood.Emotion, "mood_id", mood.ID)
	return nil
}

func (s *sqlxStore) SaveSuggestion(ctx context.Context, suggestion *Suggestion) error {
	if suggestion == nil {
		return fmt.Errorf("cannot save nil suggestion")
	}
	if suggestion.Emotion == "" {
		return fmt.Errorf("suggestion must have an emotion label")
	}
	if suggestion.Message == "" || suggestion.Tip == "" {
		return fmt.Errorf("suggestion must have message and tip")
	}

	if suggestion.Timestamp.IsZero() {
		suggestion.Timestamp = time.Now().UTC()
	}

	query := `
        INSERT INTO suggestions (mood_id, emotion, message, tip, activity, sound, timestamp)
        VALUES (:mood_id, :emotion, :message, :tip, :activity, :sound, :timestamp);
    `

	result, err := s.db.NamedExecContext(ctx, query, suggestion)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving suggestion",
			"emotion", suggestion.Emotion, "error", err)
		return fmt.Errorf("failed to save suggestion (emotion %s): %w", suggestion.Emotion, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		suggestion.ID = uint(id)
	} else {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID for suggestion",
			"emotion", suggestion.Emotion, "error", err)
	}

	s.logger.DebugContext(ctx, "Suggestion saved",
		"emotion", suggestion.Emotion, "suggestion_id", suggestion.ID)
	return nil
}

func (s *sqlxStore) SaveChatExchange(ctx context.Context, userTurn, therapistTurn *ChatTurn) error {
	if userTurn == nil || therapistTurn == nil {
		return fmt.Errorf("cannot save nil chat turn")
	}
	for _, turn := range []*ChatTurn{userTurn, therapistTurn} {
		if turn.Message == "" {
			return fmt.Errorf("chat turn must have non-empty message")
		}
		if turn.Sender != SenderUser && turn.Sender != SenderTherapist {
			return fmt.Errorf("chat turn has invalid sender %q", turn.Sender)
		}
		if turn.SessionID == "" {
			return fmt.Errorf("chat turn must have a session id")
		}
		if turn.Timestamp.IsZero() {
			turn.Timestamp = time.Now().UTC()
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for chat exchange",
			"session_id", userTurn.SessionID, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				if !errors.Is(rollbackErr, sql.ErrTxDone) {
					s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
				}
			}
		}
	}()

	query := `
        INSERT INTO chat_history (message, sender, mood, timestamp, session_id)
        VALUES (:message, :sender, :mood, :timestamp, :session_id);
    `

	for _, turn := range []*ChatTurn{userTurn, therapistTurn} {
		result, err := tx.NamedExecContext(ctx, query, turn)
		if err != nil {
			s.logger.ErrorContext(ctx, "Error saving chat turn",
				"session_id", turn.SessionID, "sender", turn.Sender, "error", err)
			return fmt.Errorf("failed to save %s chat turn (session %s): %w", turn.Sender, turn.SessionID, err)
		}
		if id, err := result.LastInsertId(); err == nil {
			turn.ID = uint(id)
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit chat exchange transaction",
			"session_id", userTurn.SessionID, "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Chat exchange saved",
		"session_id", userTurn.SessionID, "user_turn_id", userTurn.ID, "therapist_turn_id", therapistTurn.ID)
	return nil
}

func (s *sqlxStore) MoodHistory(ctx context.Context, sessionID string, limit int) ([]MoodObservation, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id cannot be empty")
	}
	limit = boundLimit(limit, DefaultMoodHistoryLimit)

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var history []MoodObservation
	query := `
        SELECT id, emotion, confidence, timestamp, session_id
        FROM mood_history
        WHERE session_id = ?
        ORDER BY timestamp DESC, id DESC
        LIMIT ?;
    `

	err := s.db.SelectContext(ctx, &history, query, sessionID, limit)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching mood history",
			"session_id", sessionID, "error", err)
		return nil, err
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting mood history",
			"session_id", sessionID, "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to get mood history for session %s: %w", sessionID, err)
	}

	s.logger.DebugContext(ctx, "Fetched mood history", "session_id", sessionID, "count", len(history))
	return history, nil
}

func (s *sqlxStore) ChatHistory(ctx context.Context, sessionID string, limit int) ([]ChatTurn, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id cannot be empty")
	}
	limit = boundLimit(limit, DefaultChatHistoryLimit)

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var history []ChatTurn
	query := `
        SELECT id, message, sender, mood, timestamp, session_id
        FROM chat_history
        WHERE session_id = ?
        ORDER BY timestamp ASC, id ASC
        LIMIT ?;
    `

	err := s.db.SelectContext(ctx, &history, query, sessionID, limit)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching chat history",
			"session_id", sessionID, "error", err)
		return nil, err
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting chat history",
			"session_id", sessionID, "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to get chat history for session %s: %w", sessionID, err)
	}

	s.logger.DebugContext(ctx, "Fetched chat history", "session_id", sessionID, "count", len(history))
	return history, nil
}

// RunMaintenance executes a VACUUM on the SQLite database. VACUUM must run
// outside a transaction.
func (s *sqlxStore) RunMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)")

	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance completed")
	return nil
}

func boundLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > maxHistoryLimit {
		return maxHistoryLimit
	}
	return limit
}
