package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ProxyClient talks to a chat-completion proxy endpoint. The request carries
// the whole transcript plus the new utterance in one text field and a
// duplicate copy of just the utterance; the response is the usual
// choices/message/content shape.
type ProxyClient struct {
	httpClient *http.Client
	url        string
	model      string
	maxTokens  int
	backoff    time.Duration
	log        zerolog.Logger
}

// NewProxyClient creates a relay client for the given endpoint.
func NewProxyClient(url, model string, maxTokens int, log zerolog.Logger) *ProxyClient {
	return &ProxyClient{
		httpClient: &http.Client{},
		url:        url,
		model:      model,
		maxTokens:  maxTokens,
		backoff:    retryBackoff,
		log:        log,
	}
}

type proxyRequest struct {
	MaxTokens    int    `json:"max_tokens"`
	ResponseType string `json:"responseType"`
	OSType       string `json:"osType"`
	Model        string `json:"model"`
	Value        string `json:"value"`
	Search       string `json:"search"`
}

type proxyResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *ProxyClient) Consult(ctx context.Context, transcript, utterance string) (string, string) {
	body, err := json.Marshal(proxyRequest{
		MaxTokens:    c.maxTokens,
		ResponseType: "normal",
		OSType:       "iOS",
		Model:        c.model,
		Value:        "Previous messages: " + transcript + userTurn(utterance),
		Search:       utterance,
	})
	if err != nil {
		c.log.Error().Err(err).Msg("error encoding AI request")
		return Apology, transcript
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		reply, ok := c.attempt(ctx, body, attempt)
		if ok {
			return reply, extendTranscript(transcript, utterance, reply)
		}
		if attempt < maxAttempts-1 {
			time.Sleep(c.backoff)
		}
	}

	return Apology, transcript
}

// attempt performs one call. A non-200 status and an empty completion body
// are both soft failures: logged, retried if attempts remain.
func (c *ProxyClient) attempt(ctx context.Context, body []byte, attempt int) (string, bool) {
	attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		c.log.Error().Err(err).Msg("error building AI request")
		return "", false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error().Err(err).Int("attempt", attempt+1).Msg("error calling AI endpoint")
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Error().Int("status", resp.StatusCode).Int("attempt", attempt+1).Msg("AI endpoint returned non-success status")
		return "", false
	}

	var parsed proxyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.log.Error().Err(err).Int("attempt", attempt+1).Msg("error decoding AI response")
		return "", false
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		c.log.Warn().Int("attempt", attempt+1).Msg("empty completion from AI endpoint")
		return "", false
	}

	return parsed.Choices[0].Message.Content, true
}
