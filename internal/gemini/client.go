// Package gemini implements integration with Google's Gemini API: structured
// suggestion generation, therapeutic chat replies, and an optional
// vision-based emotion classifier. It also carries the hardcoded fallback
// content used when generation is unavailable.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/neuromirror/backend/internal/config"
	"github.com/neuromirror/backend/internal/vision"
)

// HistoryTurn is one prior conversation line embedded into the chat prompt.
type HistoryTurn struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// Client defines the text generation capability used by the handlers. A nil
// Client means Gemini is unconfigured; callers substitute fallback content.
type Client interface {
	// GenerateSuggestion produces therapeutic content for a detected emotion.
	GenerateSuggestion(ctx context.Context, emotion string) (SuggestionContent, error)

	// GenerateChatReply produces a supportive reply to the user's message,
	// embedding the current mood and up to the last five prior turns.
	GenerateChatReply(ctx context.Context, message, mood string, history []HistoryTurn) (string, error)

	// Classify scores facial emotions through the Gemini vision API. It
	// satisfies vision.Classifier.
	Classify(ctx context.Context, imageData []byte, mimeType string) ([]vision.Face, error)
}

type sdkClient struct {
	genaiClient   *genai.Client
	log           *slog.Logger
	contentConfig *genai.GenerateContentConfig
	modelName     string
	maxRetries    int
	retryDelay    time.Duration
}

// NewClient creates a Gemini client from the provided configuration.
func NewClient(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	baseCfg := &genai.GenerateContentConfig{
		Temperature: &cfg.Temperature,
	}

	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized", "model", cfg.ModelName)
	return &sdkClient{
		genaiClient:   gi,
		log:           logger,
		contentConfig: baseCfg,
		modelName:     cfg.ModelName,
		maxRetries:    cfg.MaxRetries,
		retryDelay:    time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}, nil
}

func (c *sdkClient) generateContentWithRetries(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var resp *genai.GenerateContentResponse
	var err error

	for i := 0; i <= c.maxRetries; i++ {
		resp, err = c.genaiClient.Models.GenerateContent(ctx, c.modelName, contents, cfg)
		if err == nil {
			return resp, nil
		}

		c.log.WarnContext(ctx, "Gemini API call failed, checking for retry",
			"attempt", i+1, "max_retries", c.maxRetries, "error", err)

		var apiErr *genai.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == 500 || apiErr.Code == 503) {
			if i < c.maxRetries {
				c.log.InfoContext(ctx, "Retrying Gemini API call", "delay", c.retryDelay, "code", apiErr.Code)
				time.Sleep(c.retryDelay)
				continue
			}
			return nil, fmt.Errorf("gemini API call failed after %d retries (code %d): %w", c.maxRetries, apiErr.Code, err)
		}

		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}
	return nil, err
}

var suggestionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"message":  {Type: genai.TypeString, Description: "A supportive message, 2-3 sentences."},
		"tip":      {Type: genai.TypeString, Description: "A practical tip for managing the emotion."},
		"activity": {Type: genai.TypeString, Description: "A suggested activity."},
		"sound":    {Type: genai.TypeString, Description: "A type of calming sound."},
	},
	Required: []string{"message", "tip", "activity", "sound"},
}

func (c *sdkClient) GenerateSuggestion(ctx context.Context, emotion string) (SuggestionContent, error) {
	c.log.DebugContext(ctx, "Generating suggestion", "emotion", emotion)

	contents := []*genai.Content{
		genai.NewContentFromText(fmt.Sprintf(suggestionPromptTemplate, emotion), genai.RoleUser),
	}

	copyCfg := *c.contentConfig
	copyCfg.ResponseMIMEType = "application/json"
	copyCfg.ResponseSchema = suggestionSchema

	resp, err := c.generateContentWithRetries(ctx, contents, &copyCfg)
	if err != nil {
		c.log.ErrorContext(ctx, "Gemini suggestion generation failed", "emotion", emotion, "error", err)
		return SuggestionContent{}, fmt.Errorf("failed to generate suggestion: %w", err)
	}

	jsonText, err := c.extractTextFromResponse(ctx, resp, "suggestion")
	if err != nil {
		return SuggestionContent{}, err
	}

	var suggestion SuggestionContent
	if err := json.Unmarshal([]byte(jsonText), &suggestion); err != nil {
		c.log.ErrorContext(ctx, "Failed to parse suggestion JSON from Gemini response",
			"error", err, "response_text", jsonText)
		return SuggestionContent{}, fmt.Errorf("invalid suggestion JSON received: %w", err)
	}
	if suggestion.Message == "" || suggestion.Tip == "" {
		return SuggestionContent{}, fmt.Errorf("suggestion response missing required fields")
	}

	return suggestion, nil
}

func (c *sdkClient) GenerateChatReply(ctx context.Context, message, mood string, history []HistoryTurn) (string, error) {
	c.log.DebugContext(ctx, "Generating chat reply", "history_turns", len(history), "mood", mood)

	var sb strings.Builder
	if mood != "" {
		fmt.Fprintf(&sb, "The person's current detected mood is: %s\n\n", mood)
	}
	if len(history) > 0 {
		sb.WriteString("Previous conversation:\n")
		start := len(history) - chatHistoryWindow
		if start < 0 {
			start = 0
		}
		for _, turn := range history[start:] {
			speaker := "Human"
			if turn.Sender == "therapist" {
				speaker = "Therapist"
			}
			fmt.Fprintf(&sb, "%s: %s\n", speaker, turn.Text)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Human: %s", message)

	contents := []*genai.Content{genai.NewContentFromText(sb.String(), genai.RoleUser)}

	copyCfg := *c.contentConfig
	copyCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: chatSystemInstruction}}}

	resp, err := c.generateContentWithRetries(ctx, contents, &copyCfg)
	if err != nil {
		c.log.ErrorContext(ctx, "Gemini chat reply generation failed", "error", err)
		return "", fmt.Errorf("failed to generate chat reply: %w", err)
	}

	reply, err := c.extractTextFromResponse(ctx, resp, "chat_reply")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

var classifySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"faces": {
			Type:        genai.TypeArray,
			Description: "One entry per clearly visible human face.",
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"emotions": {
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"angry":    {Type: genai.TypeNumber},
							"disgust":  {Type: genai.TypeNumber},
							"fear":     {Type: genai.TypeNumber},
							"happy":    {Type: genai.TypeNumber},
							"sad":      {Type: genai.TypeNumber},
							"surprise": {Type: genai.TypeNumber},
							"neutral":  {Type: genai.TypeNumber},
						},
						Required: []string{"angry", "disgust", "fear", "happy", "sad", "surprise", "neutral"},
					},
				},
				Required: []string{"emotions"},
			},
		},
	},
	Required: []string{"faces"},
}

func (c *sdkClient) Classify(ctx context.Context, imageData []byte, mimeType string) ([]vision.Face, error) {
	c.log.DebugContext(ctx, "Classifying image through Gemini", "image_size", len(imageData), "mime_type", mimeType)
	if len(imageData) == 0 || mimeType == "" {
		return nil, fmt.Errorf("image data and MIME type are required")
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromBytes(imageData, mimeType)}, genai.RoleUser),
	}

	copyCfg := *c.contentConfig
	copyCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: classifySystemInstruction}}}
	copyCfg.ResponseMIMEType = "application/json"
	copyCfg.ResponseSchema = classifySchema

	resp, err := c.generateContentWithRetries(ctx, contents, &copyCfg)
	if err != nil {
		c.log.ErrorContext(ctx, "Gemini classification failed", "error", err)
		return nil, fmt.Errorf("gemini classification failed: %w", err)
	}

	jsonText, err := c.extractTextFromResponse(ctx, resp, "classify")
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Faces []vision.Face `json:"faces"`
	}
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		c.log.ErrorContext(ctx, "Failed to parse classification JSON from Gemini response",
			"error", err, "response_text", jsonText)
		return nil, fmt.Errorf("invalid classification JSON received: %w", err)
	}

	return parsed.Faces, nil
}

func (c *sdkClient) extractTextFromResponse(ctx context.Context, resp *genai.GenerateContentResponse, op string) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reasonMsg := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reasonMsg = resp.PromptFeedback.BlockReasonMessage
		}
		c.log.ErrorContext(ctx, "Gemini request blocked", "operation", op, "reason", reasonMsg)
		return "", fmt.Errorf("%s blocked by safety filter: %s", op, reasonMsg)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
			finishReason = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		c.log.WarnContext(ctx, "Gemini response missing candidates or content",
			"operation", op, "finish_reason", finishReason)
		return "", fmt.Errorf("%s returned no content, finish reason: %s", op, finishReason)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%s returned empty text", op)
	}
	return text, nil
}
