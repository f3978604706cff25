package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func newTestProxyClient(url string) *ProxyClient {
	c := NewProxyClient(url, "gpt-4o", 4096, zerolog.Nop())
	c.backoff = 0
	return c
}

func completionBody(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
}

func TestProxyConsultSuccess(t *testing.T) {
	var got proxyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("error decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(completionBody("Try the hike on Saturday."))
	}))
	defer srv.Close()

	c := newTestProxyClient(srv.URL)
	reply, transcript := c.Consult(context.Background(), "Catalog: hike, rave", "something outdoors")

	if reply != "Try the hike on Saturday." {
		t.Errorf("unexpected reply: %q", reply)
	}
	want := "Catalog: hike, rave\nUser: something outdoors\nAI: Try the hike on Saturday."
	if transcript != want {
		t.Errorf("unexpected transcript:\n got %q\nwant %q", transcript, want)
	}

	if got.ResponseType != "normal" || got.OSType != "iOS" {
		t.Errorf("unexpected envelope fields: %q %q", got.ResponseType, got.OSType)
	}
	if got.Model != "gpt-4o" || got.MaxTokens != 4096 {
		t.Errorf("unexpected model fields: %q %d", got.Model, got.MaxTokens)
	}
	if got.Search != "something outdoors" {
		t.Errorf("unexpected search field: %q", got.Search)
	}
	if got.Value != "Previous messages: Catalog: hike, rave\nUser: something outdoors" {
		t.Errorf("unexpected value field: %q", got.Value)
	}
}

func TestProxyConsultRetriesThenDegrades(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestProxyClient(srv.URL)
	transcript := "Catalog: hike"
	reply, updated := c.Consult(context.Background(), transcript, "anything")

	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
	if reply != Apology {
		t.Errorf("expected the apology reply, got %q", reply)
	}
	if updated != transcript {
		t.Errorf("expected the transcript to stay untouched, got %q", updated)
	}
}

func TestProxyConsultRecoversOnRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(completionBody("Third time lucky."))
	}))
	defer srv.Close()

	c := newTestProxyClient(srv.URL)
	reply, _ := c.Consult(context.Background(), "", "hello")

	if reply != "Third time lucky." {
		t.Errorf("expected the recovered reply, got %q", reply)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestProxyConsultEmptyCompletionIsSoftFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(completionBody(""))
	}))
	defer srv.Close()

	c := newTestProxyClient(srv.URL)
	reply, updated := c.Consult(context.Background(), "t", "u")

	if calls != 3 {
		t.Errorf("expected empty completions to be retried, got %d attempts", calls)
	}
	if reply != Apology || updated != "t" {
		t.Errorf("expected degradation, got %q / %q", reply, updated)
	}
}

func TestExtendTranscript(t *testing.T) {
	got := extendTranscript("seed", "question", "answer")
	want := "seed\nUser: question\nAI: answer"
	if got != want {
		t.Errorf("extendTranscript = %q, want %q", got, want)
	}
}
