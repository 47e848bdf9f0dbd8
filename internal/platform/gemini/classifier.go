package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/jorgeajimenezl/taskit-backend-sub000/internal/embedding"
)

// Canonical answer tokens the model is instructed to reply with. Anything
// else — including an empty reply — maps to VerdictInconclusive.
const (
	tokenDuplicate = "DUPLICATE"
	tokenDistinct  = "DISTINCT"
)

// classifyInstruction is the fixed instruction for the pairwise duplicate
// judgment. The two snippets are substituted via Sprintf.
const classifyInstruction = `You are judging whether two task summaries describe the same underlying work item.
Answer with exactly one word: DUPLICATE if they represent the same work item, DISTINCT if they do not.

Task A:
%s

Task B:
%s`

// Classifier implements the embedding.Classifier interface using a Gemini
// text model with a fixed instruction and two canonical answer tokens.
type Classifier struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewClassifier creates a Classifier backed by the given client and model.
func NewClassifier(client *genai.Client, model string, logger *slog.Logger) (*Classifier, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: client cannot be nil", embedding.ErrInvalidConfig)
	}
	if model == "" {
		return nil, fmt.Errorf("%w: classification model cannot be empty", embedding.ErrInvalidConfig)
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Classifier{
		client: client,
		model:  model,
		logger: logger.With("component", "gemini_classifier"),
	}, nil
}

// Classify submits one pair of task summaries and maps the model output to a
// verdict. Provider failures surface as transient errors; unusable output is
// inconclusive, not an error.
func (c *Classifier) Classify(ctx context.Context, textA, textB string) (embedding.Verdict, error) {
	if textA == "" || textB == "" {
		return embedding.VerdictInconclusive, embedding.ErrEmptyText
	}

	prompt := fmt.Sprintf(classifyInstruction, textA, textB)

	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr(float32(0)),
		})
	if err != nil {
		return embedding.VerdictInconclusive,
			fmt.Errorf("%w: %v", embedding.ErrTransientFailure, err)
	}

	answer := extractText(resp)
	verdict := parseVerdict(answer)

	c.logger.DebugContext(ctx, "classification completed",
		"model", c.model,
		"verdict", verdict)

	return verdict, nil
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// parseVerdict maps model output onto the canonical verdicts. The comparison
// is case-insensitive and tolerates surrounding whitespace or punctuation,
// but any answer that is not exactly one of the two tokens is inconclusive.
func parseVerdict(answer string) embedding.Verdict {
	normalized := strings.ToUpper(strings.Trim(strings.TrimSpace(answer), ".!\"'"))

	switch normalized {
	case tokenDuplicate:
		return embedding.VerdictMatch
	case tokenDistinct:
		return embedding.VerdictNoMatch
	default:
		return embedding.VerdictInconclusive
	}
}

// Compile-time interface check.
var _ embedding.Classifier = (*Classifier)(nil)
