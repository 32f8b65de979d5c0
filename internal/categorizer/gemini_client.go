package categorizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fjacquet/statement-csv/internal/dateutils"
	"fjacquet/statement-csv/internal/logging"
	"fjacquet/statement-csv/internal/models"

	"github.com/avast/retry-go"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrEmptyResponse is returned when the model produced no usable text.
var ErrEmptyResponse = errors.New("no response from Gemini API")

// GeminiConfig configures GeminiClient.
type GeminiConfig struct {
	APIKey     string
	Model      string
	Timeout    time.Duration
	Attempts   uint
	RetryDelay time.Duration
	// Categories, when set, restricts answers to this list.
	Categories []string
}

type generateFunc func(ctx context.Context, prompt string) (string, error)

// GeminiClient implements AIClient with the Google Gemini API. Calls are
// retried with backoff.
type GeminiClient struct {
	cfg      GeminiConfig
	generate generateFunc
	close    func() error
	logger   logging.Logger
}

// NewGeminiClient connects to Gemini.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig, logger logging.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	model := client.GenerativeModel(cfg.Model)

	generate := func(ctx context.Context, prompt string) (string, error) {
		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return "", fmt.Errorf("Gemini API error: %w", err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			return "", ErrEmptyResponse
		}
		return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
	}

	return newClient(cfg, generate, client.Close, logger), nil
}

func newClient(cfg GeminiConfig, generate generateFunc, closeFn func() error, logger logging.Logger) *GeminiClient {
	if cfg.Attempts == 0 {
		cfg.Attempts = 1
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &GeminiClient{
		cfg:      cfg,
		generate: generate,
		close:    closeFn,
		logger:   logging.OrDefault(logger),
	}
}

// Close releases the underlying client.
func (c *GeminiClient) Close() error {
	if c.close == nil {
		return nil
	}
	return c.close()
}

// SuggestCategory asks the model for a category.
func (c *GeminiClient) SuggestCategory(ctx context.Context, rec models.Record) (string, error) {
	prompt := buildPrompt(rec, c.cfg.Categories)

	var answer string
	err := retry.Do(
		func() error {
			callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
			defer cancel()
			text, err := c.generate(callCtx, prompt)
			if err != nil {
				return err
			}
			answer = text
			return nil
		},
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, context.Canceled)
		}),
		retry.OnRetry(func(n uint, err error) {
			c.logger.WithError(err).Warn("Retrying category suggestion", logging.F("attempt", n+1))
		}),
		retry.Attempts(c.cfg.Attempts),
		retry.Delay(c.cfg.RetryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", err
	}

	category := extractCategory(answer, c.cfg.Categories)
	c.logger.Debug("Category suggested",
		logging.F(logging.FieldPayee, rec.Payee),
		logging.F(logging.FieldCategory, category))
	return category, nil
}

func buildPrompt(rec models.Record, categories []string) string {
	var b strings.Builder
	b.WriteString("Categorize the following bank operation for a personal ledger.\n")
	fmt.Fprintf(&b, "Payee: %s\n", rec.Payee)
	fmt.Fprintf(&b, "Description: %s\n", rec.Description)
	fmt.Fprintf(&b, "Amount: %s%s %s\n", signPrefix(rec.Sign), rec.Amount.StringFixed(2), rec.Unit)
	fmt.Fprintf(&b, "Date: %s\n", dateutils.ToISODate(rec.Date))
	if len(categories) > 0 {
		fmt.Fprintf(&b, "\nChoose exactly one of: %s\n", strings.Join(categories, ", "))
	}
	b.WriteString("\nRespond in this format:\nCategory: [category]\n")
	return b.String()
}

func signPrefix(s models.Sign) string {
	if s == models.SignNegative {
		return "-"
	}
	return ""
}

// extractCategory reads the "Category:" line of an answer. With a category
// list, answers outside it are discarded.
func extractCategory(response string, categories []string) string {
	var category string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Category:") {
			category = strings.TrimSpace(strings.TrimPrefix(line, "Category:"))
			break
		}
	}
	category = strings.Trim(category, "[]\"' ")

	if len(categories) == 0 {
		return category
	}
	for _, known := range categories {
		if strings.EqualFold(known, category) {
			return known
		}
	}
	return ""
}
