package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"relay/internal/middleware"
	"relay/internal/models"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"

// RefinerService polishes raw post drafts with an external language model.
// It degrades gracefully: without an API key, or on any upstream failure,
// the draft passes through unchanged.
type RefinerService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewRefinerService(apiKey, baseURL string) *RefinerService {
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	return &RefinerService{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// RefineResult distinguishes a refined draft from a pass-through.
type RefineResult struct {
	Content string `json:"content"`
	Refined bool   `json:"refined"`
}

// Refine rewrites the draft for clarity while keeping its meaning. The post
// type steers the tone (a marketplace listing reads differently from an
// opportunity announcement).
func (s *RefinerService) Refine(ctx context.Context, content string, postType models.PostType) (*RefineResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if s.apiKey == "" {
		return &RefineResult{Content: content, Refined: false}, nil
	}

	refined, err := s.callModel(ctx, content, postType)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "content refinement failed, passing draft through", "error", err)
		return &RefineResult{Content: content, Refined: false}, nil
	}
	return &RefineResult{Content: refined, Refined: true}, nil
}

func (s *RefinerService) callModel(ctx context.Context, content string, postType models.PostType) (string, error) {
	prompt := fmt.Sprintf(
		"Rewrite the following campus %s post for clarity and tone. Keep the meaning, keep it concise, return only the rewritten text.\n\n%s",
		strings.ToLower(string(postType)), content,
	)

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("refiner upstream returned status %d", resp.StatusCode)
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("refiner upstream returned no candidates")
	}

	refined := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	if refined == "" {
		return "", fmt.Errorf("refiner upstream returned empty text")
	}
	return refined, nil
}
