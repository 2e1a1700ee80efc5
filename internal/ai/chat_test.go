package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChatBackendRequestBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
			return
		}
		if body["model"] != "GigaChat" {
			t.Errorf("model = %v", body["model"])
		}
		if body["stream"] != false {
			t.Errorf("stream = %v, want false", body["stream"])
		}
		if body["repetition_penalty"] != 1.1 {
			t.Errorf("repetition_penalty = %v", body["repetition_penalty"])
		}
		if body["max_tokens"] != float64(512) {
			t.Errorf("max_tokens = %v", body["max_tokens"])
		}
		msgs, _ := body["messages"].([]any)
		if len(msgs) != 2 {
			t.Errorf("messages = %v, want system and user", body["messages"])
			return
		}
		if m := msgs[0].(map[string]any); m["role"] != "system" || m["content"] != "persona" {
			t.Errorf("messages[0] = %v", m)
		}
		if m := msgs[1].(map[string]any); m["role"] != "user" || m["content"] != "prompt" {
			t.Errorf("messages[1] = %v", m)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"restyled post"}}],"usage":{"total_tokens":42}}`))
	}))
	defer srv.Close()

	b := NewChatBackend(srv.Client(), srv.URL+"/v1/")
	got, err := b.Complete(context.Background(), "tok", CompletionRequest{
		Model: "GigaChat", System: "persona", User: "prompt", MaxTokens: 512, RepetitionPenalty: 1.1,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "restyled post" {
		t.Errorf("Complete = %q", got)
	}
}

func TestChatRequestOmitsZeroPenalty(t *testing.T) {
	data, err := json.Marshal(newChatRequest(CompletionRequest{Model: "gpt-4o", System: "s", User: "u"}))
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]any
	json.Unmarshal(data, &body)
	if _, ok := body["repetition_penalty"]; ok {
		t.Errorf("repetition_penalty should be omitted when zero: %s", data)
	}
	if _, ok := body["stream"]; !ok {
		t.Errorf("stream must always be sent: %s", data)
	}
}

func TestChatBackendErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message":"Unauthorized"}`, 401},
		{"server error", http.StatusInternalServerError, `oops`, 500},
		{"no choices", http.StatusOK, `{"choices":[]}`, 200},
		{"bad json", http.StatusOK, `not json`, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewChatBackend(srv.Client(), srv.URL).Complete(context.Background(), "tok", CompletionRequest{Model: "m"})
			var rerr *RewriteError
			if !errors.As(err, &rerr) {
				t.Fatalf("error = %v, want *RewriteError", err)
			}
			if rerr.Kind != ProviderError || rerr.Status != tt.wantStatus || rerr.Body != tt.body {
				t.Errorf("got kind=%v status=%d body=%q", rerr.Kind, rerr.Status, rerr.Body)
			}
		})
	}
}

func TestChatBackendTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewChatBackend(http.DefaultClient, url).Complete(context.Background(), "tok", CompletionRequest{Model: "m"})
	var rerr *RewriteError
	if !errors.As(err, &rerr) || rerr.Kind != TransportError {
		t.Fatalf("error = %v, want TransportError", err)
	}
}
