package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/neuromirror/backend/internal/database"
	"github.com/neuromirror/backend/internal/gemini"
	"github.com/neuromirror/backend/internal/vision"
)

// defaultSessionID partitions records of callers that don't supply a session.
const defaultSessionID = "default"

// Deps carries the handler dependencies. Generator may be nil when Gemini is
// unconfigured; handlers then serve fallback content.
type Deps struct {
	Logger     *slog.Logger
	Store      database.Store
	Classifier vision.Classifier
	Generator  gemini.Client
}

type detectRequest struct {
	Image     string `json:"image"`
	SessionID string `json:"session_id"`
}

type detectResponse struct {
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
	Message    string  `json:"message"`
	Tip        string  `json:"tip"`
	Activity   string  `json:"activity"`
	Sound      string  `json:"sound"`
}

// handleDetect classifies the dominant facial emotion in a webcam frame,
// persists the observation and a therapeutic suggestion, and returns both.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Image == "" {
		respondError(w, http.StatusBadRequest, "no image provided")
		return
	}

	imageData, mimeType, err := vision.DecodeBase64Image(req.Image)
	if err != nil {
		s.logger.DebugContext(r.Context(), "Rejected undecodable image", "error", err)
		respondError(w, http.StatusBadRequest, "invalid image format")
		return
	}

	faces, err := s.deps.Classifier.Classify(r.Context(), imageData, mimeType)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Emotion classification failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if len(faces) == 0 {
		respondError(w, http.StatusBadRequest, "no face detected")
		return
	}

	emotion, confidence, ok := vision.Dominant(faces[0].Emotions)
	if !ok {
		respondError(w, http.StatusBadRequest, "no face detected")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = defaultSessionID
	}

	mood := &database.MoodObservation{
		Emotion:    emotion,
		Confidence: confidence,
		SessionID:  sessionID,
	}
	if err := s.deps.Store.SaveMood(r.Context(), mood); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to save mood observation", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	suggestion := s.suggestionFor(r, emotion)

	record := &database.Suggestion{
		MoodID:   sql.NullInt64{Int64: int64(mood.ID), Valid: mood.ID != 0},
		Emotion:  emotion,
		Message:  suggestion.Message,
		Tip:      suggestion.Tip,
		Activity: suggestion.Activity,
		Sound:    suggestion.Sound,
	}
	if err := s.deps.Store.SaveSuggestion(r.Context(), record); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to save suggestion", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, detectResponse{
		Emotion:    emotion,
		Confidence: math.Round(confidence*100) / 100,
		Message:    suggestion.Message,
		Tip:        suggestion.Tip,
		Activity:   suggestion.Activity,
		Sound:      suggestion.Sound,
	})
}

// suggestionFor asks Gemini for therapeutic content, substituting the
// hardcoded fallback when the client is unconfigured or the call fails.
func (s *Server) suggestionFor(r *http.Request, emotion string) gemini.SuggestionContent {
	if s.deps.Generator == nil {
		return gemini.FallbackSuggestion(emotion)
	}
	suggestion, err := s.deps.Generator.GenerateSuggestion(r.Context(), emotion)
	if err != nil {
		s.logger.WarnContext(r.Context(), "Suggestion generation failed, using fallback",
			"emotion", emotion, "error", err)
		return gemini.FallbackSuggestion(emotion)
	}
	return suggestion
}

type chatRequest struct {
	Message     string               `json:"message"`
	Mood        string               `json:"mood"`
	ChatHistory []gemini.HistoryTurn `json:"chat_history"`
	SessionID   string               `json:"session_id"`
}

type chatResponse struct {
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}

// handleChat forwards the user's message plus mood context to Gemini and
// persists both sides of the exchange.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		respondError(w, http.StatusBadRequest, "no message provided")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = defaultSessionID
	}

	reply := s.chatReplyFor(r, req.Message, req.Mood, req.ChatHistory)

	mood := sql.NullString{String: req.Mood, Valid: req.Mood != ""}
	userTurn := &database.ChatTurn{
		Message:   req.Message,
		Sender:    database.SenderUser,
		Mood:      mood,
		SessionID: sessionID,
	}
	therapistTurn := &database.ChatTurn{
		Message:   reply,
		Sender:    database.SenderTherapist,
		Mood:      mood,
		SessionID: sessionID,
	}
	if err := s.deps.Store.SaveChatExchange(r.Context(), userTurn, therapistTurn); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to save chat exchange", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, chatResponse{
		Response:  reply,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) chatReplyFor(r *http.Request, message, mood string, history []gemini.HistoryTurn) string {
	if s.deps.Generator == nil {
		return gemini.FallbackChatReplyUnconfigured
	}
	reply, err := s.deps.Generator.GenerateChatReply(r.Context(), message, mood, history)
	if err != nil || reply == "" {
		s.logger.WarnContext(r.Context(), "Chat reply generation failed, using fallback", "error", err)
		return gemini.FallbackChatReplyError
	}
	return reply
}

type moodHistoryEntry struct {
	Emotion    string    `json:"emotion"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// handleMoodHistory returns mood observations for a session, newest first.
func (s *Server) handleMoodHistory(w http.ResponseWriter, r *http.Request) {
	sessionID, limit := historyParams(r, database.DefaultMoodHistoryLimit)

	history, err := s.deps.Store.MoodHistory(r.Context(), sessionID, limit)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to get mood history", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	entries := make([]moodHistoryEntry, 0, len(history))
	for _, mood := range history {
		entries = append(entries, moodHistoryEntry{
			Emotion:    mood.Emotion,
			Confidence: mood.Confidence,
			Timestamp:  mood.Timestamp,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{"history": entries})
}

type chatHistoryEntry struct {
	Message   string    `json:"message"`
	Sender    string    `json:"sender"`
	Mood      *string   `json:"mood"`
	Timestamp time.Time `json:"timestamp"`
}

// handleChatHistory returns chat turns for a session, oldest first.
func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	sessionID, limit := historyParams(r, database.DefaultChatHistoryLimit)

	history, err := s.deps.Store.ChatHistory(r.Context(), sessionID, limit)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to get chat history", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	entries := make([]chatHistoryEntry, 0, len(history))
	for _, turn := range history {
		entry := chatHistoryEntry{
			Message:   turn.Message,
			Sender:    turn.Sender,
			Timestamp: turn.Timestamp,
		}
		if turn.Mood.Valid {
			mood := turn.Mood.String
			entry.Mood = &mood
		}
		entries = append(entries, entry)
	}

	respondJSON(w, http.StatusOK, map[string]any{"history": entries})
}

func historyParams(r *http.Request, defaultLimit int) (string, int) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = defaultSessionID
	}

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return sessionID, limit
}

// handleHealth reports service status and whether Gemini is configured.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":            "healthy",
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
		"gemini_configured": s.deps.Generator != nil,
	})
}
