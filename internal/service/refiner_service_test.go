package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"relay/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefinerService_Refine_EmptyContent(t *testing.T) {
	t.Parallel()

	svc := NewRefinerService("", "")
	_, err := svc.Refine(context.Background(), "   ", models.PostTypeCasual)
	assertValidationError(t, err)
}

func TestRefinerService_Refine_NoAPIKeyPassesThrough(t *testing.T) {
	t.Parallel()

	svc := NewRefinerService("", "")
	result, err := svc.Refine(context.Background(), "my raw draft", models.PostTypeCasual)
	require.NoError(t, err)
	assert.False(t, result.Refined)
	assert.Equal(t, "my raw draft", result.Content)
}

func TestRefinerService_Refine_Success(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Contents)
		assert.Contains(t, req.Contents[0].Parts[0].Text, "my raw draft")

		_, err := w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"  my polished draft "}]}}]}`))
		require.NoError(t, err)
	}))
	defer upstream.Close()

	svc := NewRefinerService("test-key", upstream.URL)
	result, err := svc.Refine(context.Background(), "my raw draft", models.PostTypeMarketplace)
	require.NoError(t, err)
	assert.True(t, result.Refined)
	assert.Equal(t, "my polished draft", result.Content)
}

func TestRefinerService_Refine_UpstreamFailurePassesThrough(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	svc := NewRefinerService("test-key", upstream.URL)
	result, err := svc.Refine(context.Background(), "my raw draft", models.PostTypeCasual)
	require.NoError(t, err)
	assert.False(t, result.Refined)
	assert.Equal(t, "my raw draft", result.Content)
}

func TestRefinerService_Refine_EmptyCandidatesPassesThrough(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer upstream.Close()

	svc := NewRefinerService("test-key", upstream.URL)
	result, err := svc.Refine(context.Background(), "my raw draft", models.PostTypeCasual)
	require.NoError(t, err)
	assert.False(t, result.Refined)
}
