package ai

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient is a Recommender backed by the OpenAI chat completions API,
// for deployments that talk to OpenAI directly instead of the proxy. Same
// retry envelope and degradation as the proxy client.
type OpenAIClient struct {
	client    *openai.Client
	model     string
	maxTokens int
	backoff   time.Duration
	log       zerolog.Logger
}

// NewOpenAIClient creates an OpenAI-backed relay.
func NewOpenAIClient(apiKey, model string, maxTokens int, log zerolog.Logger) *OpenAIClient {
	return &OpenAIClient{
		client:    openai.NewClient(apiKey),
		model:     model,
		maxTokens: maxTokens,
		backoff:   retryBackoff,
		log:       log,
	}
}

func (c *OpenAIClient) Consult(ctx context.Context, transcript, utterance string) (string, string) {
	request := openai.ChatCompletionRequest{
		Model:               c.model,
		MaxCompletionTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: "Previous messages: " + transcript + userTurn(utterance),
			},
		},
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		resp, err := c.client.CreateChatCompletion(attemptCtx, request)
		cancel()

		if err != nil {
			c.log.Error().Err(err).Int("attempt", attempt+1).Msg("error calling OpenAI")
		} else if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			c.log.Warn().Int("attempt", attempt+1).Msg("empty completion from OpenAI")
		} else {
			reply := resp.Choices[0].Message.Content
			return reply, extendTranscript(transcript, utterance, reply)
		}

		if attempt < maxAttempts-1 {
			time.Sleep(c.backoff)
		}
	}

	return Apology, transcript
}
