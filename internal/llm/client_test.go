package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/docstudio/internal/models"
)

func TestClient_Generate(t *testing.T) {
	mock := NewMockProvider("  an answer \n")
	c := NewClient(mock, nil, WithDefaults(0.2, 300))

	out, err := c.Generate(context.Background(), "question", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "an answer", out)

	opts := mock.Options()
	require.Len(t, opts, 1)
	assert.Equal(t, "mock-model", opts[0].Model)
	assert.Equal(t, 0.2, opts[0].Temperature)
	assert.Equal(t, 300, opts[0].MaxTokens)
}

func TestClient_Generate_providerError(t *testing.T) {
	cause := errors.New("401 unauthorized")
	mock := NewMockProvider("unused").FailWith(cause)
	c := NewClient(mock, nil)

	_, err := c.Generate(context.Background(), "p", GenerateOptions{})
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "mock", perr.Provider)
	assert.ErrorIs(t, err, cause)
}

func TestClient_Generate_emptyResponse(t *testing.T) {
	c := NewClient(NewMockProvider(" \n\t"), nil)
	_, err := c.Generate(context.Background(), "p", GenerateOptions{})
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestClient_Summarize(t *testing.T) {
	mock := NewMockProvider("A short summary.")
	c := NewClient(mock, nil)
	long := strings.Repeat("x", MaxInputChars+500)

	out, err := c.Summarize(context.Background(), long, models.LengthLong)
	require.NoError(t, err)
	assert.Equal(t, "A short summary.", out)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0], "Be between 400 and 600 words")
	assert.NotContains(t, calls[0], strings.Repeat("x", MaxInputChars+1))
	assert.Equal(t, summaryMaxTokens, mock.Options()[0].MaxTokens)
	assert.Equal(t, summaryTemperature, mock.Options()[0].Temperature)
}

func TestClient_Summarize_emptyInput(t *testing.T) {
	mock := NewMockProvider("x")
	c := NewClient(mock, nil)
	_, err := c.Summarize(context.Background(), "   ", models.LengthShort)
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Empty(t, mock.Calls())
}

func TestClient_KeyTakeaways(t *testing.T) {
	answer := "1. First point\n2) Second point\n\n- Third point\n• Fourth point\n* Fifth point\n6. Sixth point\n"
	c := NewClient(NewMockProvider(answer), nil)
	got, err := c.KeyTakeaways(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, []string{"First point", "Second point", "Third point", "Fourth point", "Fifth point"}, got)
}

func TestParseTakeaways(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"only markers", "-\n•\n3.", nil},
		{"nested markers", "1. - Revenue up", []string{"Revenue up"}},
		{"keeps leading numbers in text", "2024 revenue grew", []string{"2024 revenue grew"}},
		{"parenthesized", "(1) Item", []string{"Item"}},
		{"bold lead", "**Revenue** grew 12%", []string{"**Revenue** grew 12%"}},
		{"bullet then bold", "* **Costs** fell\n- **Churn** flat", []string{"**Costs** fell", "**Churn** flat"}},
		{"star bullet", "*   Margins held", []string{"Margins held"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTakeaways(tt.in)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), MaxTakeaways)
			for _, line := range got {
				assert.NotEmpty(t, line)
			}
		})
	}
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	p, err := NewProvider(ctx, ProviderConfig{Provider: "mock"})
	require.NoError(t, err)
	assert.Equal(t, "mock", p.Name())
	answer, err := p.Generate(ctx, "Summarize this.", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, offlineAnswer, answer)
	answer, err = p.Generate(ctx, "Return compliance_summary as JSON.", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, offlineReport, answer)

	p, err = NewProvider(ctx, ProviderConfig{Provider: "ollama"})
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())
	assert.Equal(t, DefaultOllamaModel, p.DefaultModel())

	p, err = NewProvider(ctx, ProviderConfig{Provider: "OpenAI", APIKey: "sk-test", Model: "gpt-4"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4", p.DefaultModel())

	_, err = NewProvider(ctx, ProviderConfig{Provider: "openai"})
	assert.Error(t, err, "missing api key")

	_, err = NewProvider(ctx, ProviderConfig{Provider: "gemini"})
	assert.Error(t, err, "missing api key")

	p, err = NewProvider(ctx, ProviderConfig{Provider: "gemini", APIKey: "g-test"})
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", p.DefaultModel())
	assert.NoError(t, p.Close())

	_, err = NewProvider(ctx, ProviderConfig{Provider: "watsonx"})
	assert.Error(t, err)
}
