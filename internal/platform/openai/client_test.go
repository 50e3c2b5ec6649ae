package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yungbote/ainews-backend/internal/platform/logger"
)

func TestGenerateText(t *testing.T) {
	var got responsesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" {
			t.Errorf("path: got=%q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("auth header: got=%q", r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"output":[{"type":"message","role":"assistant","content":[{"type":"output_text","text":"# report"}]}]}`))
	}))
	defer srv.Close()

	temp := 1.0
	c, err := New(logger.Nop(), Config{APIKey: "sk-test", BaseURL: srv.URL, Model: "m", MaxTokens: 8000, Temperature: &temp})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	text, err := c.GenerateText(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if text != "# report" {
		t.Fatalf("text: want=%q got=%q", "# report", text)
	}
	if len(got.Input) != 2 || got.Input[0].Role != "system" || got.Input[1].Content != "user" {
		t.Fatalf("request input: got=%+v", got.Input)
	}
	if got.Temperature == nil || *got.Temperature != 1.0 || got.MaxOutputTokens != 8000 {
		t.Fatalf("request params: got temp=%v max=%d", got.Temperature, got.MaxOutputTokens)
	}
}

func TestGenerateTextHTTPErrorNoRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	c, err := New(logger.Nop(), Config{APIKey: "sk-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.GenerateText(context.Background(), "sys", "user")
	var httpErr *openAIHTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("want 429 error, got=%v", err)
	}
	if calls != 1 {
		t.Fatalf("calls: want=1 got=%d", calls)
	}
}

func TestGenerateTextEmptyOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":[]}`))
	}))
	defer srv.Close()

	c, _ := New(logger.Nop(), Config{APIKey: "sk-test", BaseURL: srv.URL})
	if _, err := c.GenerateText(context.Background(), "sys", "user"); err == nil {
		t.Fatalf("expected error on empty output")
	}
}
