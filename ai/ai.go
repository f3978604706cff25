package ai

import (
	"context"
	"time"
)

// Apology is returned verbatim when every attempt to reach the
// recommendation backend fails.
const Apology = "Sorry, I could not get a response from the AI assistant."

const (
	maxAttempts    = 3
	retryBackoff   = 1 * time.Second
	attemptTimeout = 30 * time.Second
)

// Recommender relays a consultation turn to a text-completion backend.
// Consult sends the full prior transcript plus the new utterance; on success
// it returns the reply and the transcript extended with both; on failure it
// returns the fixed apology and the prior transcript unmodified, so a failed
// turn is never recorded into context.
type Recommender interface {
	Consult(ctx context.Context, transcript, utterance string) (reply, updated string)
}

func userTurn(utterance string) string {
	return "\nUser: " + utterance
}

func extendTranscript(transcript, utterance, reply string) string {
	return transcript + userTurn(utterance) + "\nAI: " + reply
}
