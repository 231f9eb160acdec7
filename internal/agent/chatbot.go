package agent

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/docstudio/internal/llm"
	"github.com/hyperjump/docstudio/internal/models"
	"github.com/hyperjump/docstudio/internal/prompt"
	"github.com/hyperjump/docstudio/pkg/utils"
)

// HistoryWindow is how many prior messages are replayed to the model.
const HistoryWindow = 4

// ErrEmptyQuestion is returned when the chatbot is asked nothing.
var ErrEmptyQuestion = errors.New("question cannot be empty")

// Chatbot answers compliance questions within a session.
type Chatbot struct {
	client *llm.Client
	logger *zap.Logger
}

// NewChatbot returns a Chatbot calling client.
func NewChatbot(client *llm.Client, logger *zap.Logger) *Chatbot {
	return &Chatbot{client: client, logger: utils.LoggerOrNop(logger)}
}

// Reply answers question using the last HistoryWindow messages of sess and optional
// document context. The exchange is appended to the session only on success.
func (c *Chatbot) Reply(ctx context.Context, sess *Session, question, contextText string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	answer, err := c.client.Render(ctx, prompt.Chatbot, map[string]string{
		"question": question,
		"context":  strings.TrimSpace(contextText),
		"history":  formatHistory(sess.Recent(HistoryWindow)),
	}, llm.GenerateOptions{})
	if err != nil {
		return "", err
	}
	sess.appendMessages(
		models.ChatMessage{Role: models.RoleUser, Content: question},
		models.ChatMessage{Role: models.RoleAssistant, Content: answer},
	)
	c.logger.Debug("chat reply", zap.String("session", sess.ID), zap.Int("answer_chars", len(answer)))
	return answer, nil
}

func formatHistory(msgs []models.ChatMessage) string {
	var b strings.Builder
	for _, m := range msgs {
		if m.Role == models.RoleUser {
			b.WriteString("User: ")
		} else {
			b.WriteString("Assistant: ")
		}
		b.WriteString(m.Content)
		b.WriteByte('\n')
	}
	return b.String()
}
