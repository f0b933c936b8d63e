package manual

import (
	"context"

	"github.com/rickchristie/chefbot"
	"github.com/tmc/langchaingo/llms"
)

// Session is a multi-turn conversation over one Agent. History is kept across Send calls and
// each turn gets its own iteration budget. A Session is not safe for concurrent use.
type Session struct {
	agent    *Agent
	messages []llms.MessageContent
	turns    int
}

// NewSession starts a conversation holding only the system message.
func (a *Agent) NewSession() *Session {
	s := &Session{agent: a}
	s.Reset()
	return s
}

// Send adds a user message and runs the loop until the model answers or the budget runs out.
// When the model cannot be reached, the turn is discarded and history is left unchanged.
func (s *Session) Send(ctx context.Context, message string, opts ...RunOption) (string, error) {
	res, err := s.SendDetailed(ctx, message, opts...)
	if err != nil {
		return "", err
	}
	return res.Answer, nil
}

// SendDetailed is Send returning the full Result of the turn.
func (s *Session) SendDetailed(
	ctx context.Context,
	message string,
	opts ...RunOption,
) (*Result, error) {
	cfg := runConfig{maxIterations: s.agent.maxIterations}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx = s.agent.startTrace(ctx, map[string]any{
		"turn":           s.turns + 1,
		"message":        message,
		"max_iterations": cfg.maxIterations,
	})

	messages := make([]llms.MessageContent, len(s.messages), len(s.messages)+1)
	copy(messages, s.messages)
	messages = append(messages, chefbot.TextMessage(llms.ChatMessageTypeHuman, message))

	res, err := s.agent.loop(ctx, messages, cfg.maxIterations)
	if err != nil {
		return res, err
	}
	s.messages = res.Messages
	s.turns++
	return res, nil
}

// Reset drops the history back to the system message.
func (s *Session) Reset() {
	s.messages = []llms.MessageContent{
		chefbot.TextMessage(llms.ChatMessageTypeSystem, s.agent.systemPrompt),
	}
	s.turns = 0
}

// Turns returns the number of completed turns since the last Reset.
func (s *Session) Turns() int {
	return s.turns
}

// Messages returns a copy of the conversation history.
func (s *Session) Messages() []llms.MessageContent {
	out := make([]llms.MessageContent, len(s.messages))
	copy(out, s.messages)
	return out
}
