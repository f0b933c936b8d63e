package chefbot_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rickchristie/chefbot"
	"github.com/rickchristie/chefbot/internal/tt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func TestContentResponse_First(t *testing.T) {
	tests := []struct {
		name    string
		resp    *chefbot.ContentResponse
		wantErr error
	}{
		{name: "nil response", resp: nil, wantErr: chefbot.ErrEmptyResponse},
		{name: "no choices", resp: &chefbot.ContentResponse{}, wantErr: chefbot.ErrEmptyResponse},
		{
			name: "nil choice",
			resp: &chefbot.ContentResponse{Choices: []*chefbot.ContentChoice{nil}},
			wantErr: chefbot.ErrEmptyResponse,
		},
		{
			name: "first choice",
			resp: &chefbot.ContentResponse{Choices: []*chefbot.ContentChoice{{Content: "ok"}}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			choice, err := tc.resp.First()
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ok", choice.Content)
		})
	}
}

func TestGenerateText(t *testing.T) {
	t.Run("sends system and user", func(t *testing.T) {
		model := tt.NewMockModel().AddResponse("Bonjour")

		out, err := chefbot.GenerateText(context.Background(), model, "sys", "question")
		require.NoError(t, err)
		assert.Equal(t, "Bonjour", out)

		require.Len(t, model.CapturedMessages, 1)
		msgs := model.CapturedMessages[0]
		require.Len(t, msgs, 2)
		assert.Equal(t, llms.ChatMessageTypeSystem, msgs[0].Role)
		assert.Equal(t, llms.ChatMessageTypeHuman, msgs[1].Role)
		assert.Equal(t, "question", tt.MessageText(msgs[1]))
	})

	t.Run("omits empty system", func(t *testing.T) {
		model := tt.NewMockModel().AddResponse("ok")

		_, err := chefbot.GenerateText(context.Background(), model, "", "question")
		require.NoError(t, err)
		assert.Len(t, model.CapturedMessages[0], 1)
	})

	t.Run("propagates model error", func(t *testing.T) {
		boom := errors.New("rate limited")
		model := tt.NewMockModel().AddError(boom)

		_, err := chefbot.GenerateText(context.Background(), model, "sys", "question")
		assert.ErrorIs(t, err, boom)
	})
}
