package openai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/poiesic/asha/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const narratorSystemPrompt = `You are a fertility clinic assistant.
Summarize embryology progress for a patient in clear, supportive, neutral language.
Constraints:
- Be factual and concise (5 to 12 bullet points max plus a one-paragraph overview).
- Do NOT give medical advice or diagnosis; do NOT predict outcomes.
- If specific data is missing, say so briefly.
- Explain any terms very briefly (e.g. "blastocyst (a day-5/6 embryo)").
- Use headings and bullet points; keep it scannable for patients.
- If grades exist (e.g. 4BB), mention them in context but avoid judging prognosis.`

const narratorTemperature = 0.2

// Narrator writes patient-facing embryology summaries with an
// OpenAI-compatible chat model. It satisfies clinic.Narrator.
type Narrator struct {
	config     *ai.Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewNarrator creates a narrator using the provided configuration.
// A missing API key is not an error here; Narrate reports it.
func NewNarrator(config *ai.Config) (*Narrator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Narrator{
		config:     config,
		httpClient: &http.Client{Timeout: config.RequestTimeout},
		logger:     slog.Default().With("component", "openai-narrator"),
	}, nil
}

// Narrate sends the ledger to the chat model and returns its answer.
func (n *Narrator) Narrate(ctx context.Context, ledger string) (string, error) {
	if n.config.APIKey == "" {
		return "", fmt.Errorf("openai: API key not configured: %w", ai.ErrMissingCredential)
	}

	opts := []openai.Option{
		openai.WithToken(n.config.APIKey),
		openai.WithModel(n.config.SummaryModel),
		openai.WithHTTPClient(n.httpClient),
	}
	if n.config.RemoteHost != "" {
		opts = append(opts, openai.WithBaseURL(n.config.RemoteHost))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return "", fmt.Errorf("openai: failed to create client: %w: %w", ai.ErrProviderUnavailable, err)
	}

	prompt := "Patient daily embryology ledger:\n\n" + ledger + "\n\n" +
		"Write a short overview paragraph and 5 to 12 bullet points tailored to this ledger. " +
		"Avoid predictions and medical advice; keep it supportive and neutral."
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, narratorSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	n.logger.Debug("requesting summary", "model", n.config.SummaryModel)
	resp, err := llm.GenerateContent(ctx, messages, llms.WithTemperature(narratorTemperature))
	if err != nil {
		n.logger.Warn("summary request failed", "err", err)
		return "", classify("summary", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", fmt.Errorf("openai: summary: %w", ai.ErrEmptyResponse)
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}
