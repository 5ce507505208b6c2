package textgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/orris-inc/tracksync/internal/domain/customerrequest"
	"github.com/orris-inc/tracksync/internal/infrastructure/telemetry"
	"github.com/orris-inc/tracksync/internal/shared/config"
	"github.com/orris-inc/tracksync/internal/shared/logger"
)

const (
	instrumentationName = "github.com/orris-inc/tracksync/textgen"
	defaultPriority     = 2
	creationMaxTokens   = 150
	resolutionMaxTokens = 200
)

// Client talks to the Anthropic Messages API.
type Client struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	timeout   time.Duration
	language  string
	logger    logger.Interface

	issueTmpl      *template.Template
	creationTmpl   *template.Template
	resolutionTmpl *template.Template
}

var _ Generator = (*Client)(nil)

func NewClient(cfg config.AIConfig, log logger.Interface, opts ...option.RequestOption) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("textgen: API key is required")
	}

	// Enrichment is best effort; a failed call is not repeated.
	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	reqOpts = append(reqOpts, opts...)

	c := &Client{
		client:    anthropic.NewClient(reqOpts...),
		model:     anthropic.Model(cfg.Model),
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		language:  cfg.Language,
		logger:    log.With("component", "textgen"),
	}
	if c.maxTokens <= 0 {
		c.maxTokens = 1024
	}
	if c.language == "" {
		c.language = "Spanish"
	}

	var err error
	if c.issueTmpl, err = template.New("issue").Parse(issuePromptTemplate); err != nil {
		return nil, fmt.Errorf("failed to parse issue template: %w", err)
	}
	if c.creationTmpl, err = template.New("creation").Parse(creationPromptTemplate); err != nil {
		return nil, fmt.Errorf("failed to parse creation template: %w", err)
	}
	if c.resolutionTmpl, err = template.New("resolution").Parse(resolutionPromptTemplate); err != nil {
		return nil, fmt.Errorf("failed to parse resolution template: %w", err)
	}

	metricsOnce.Do(initMetrics)
	return c, nil
}

type issueSuggestionJSON struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Labels      []string `json:"labels"`
	Priority    *int     `json:"priority"`
}

func (c *Client) SuggestIssue(ctx context.Context, in IssueInput) (*customerrequest.IssueSuggestion, error) {
	prompt, err := render(c.issueTmpl, map[string]string{
		"Type":       in.Type.String(),
		"Content":    in.Content,
		"Env":        in.Env,
		"AppVersion": in.AppVersion,
	})
	if err != nil {
		return nil, err
	}

	text, err := c.complete(ctx, "suggest_issue", issueSystemPrompt, prompt, c.maxTokens, 0.3)
	if err != nil {
		return nil, err
	}

	var parsed issueSuggestionJSON
	if err := json.Unmarshal([]byte(extractJSON(text)), &parsed); err != nil {
		return nil, fmt.Errorf("textgen: issue suggestion is not valid JSON: %w", err)
	}
	if strings.TrimSpace(parsed.Title) == "" || strings.TrimSpace(parsed.Description) == "" {
		return nil, fmt.Errorf("textgen: issue suggestion is missing title or description")
	}

	s := &customerrequest.IssueSuggestion{
		Title:       parsed.Title,
		Description: parsed.Description,
		Labels:      parsed.Labels,
		Priority:    defaultPriority,
	}
	if s.Labels == nil {
		s.Labels = []string{}
	}
	if parsed.Priority != nil {
		s.Priority = *parsed.Priority
	}
	return s, nil
}

func (c *Client) DraftCreationMessage(ctx context.Context, in CreationInput) (string, error) {
	prompt, err := render(c.creationTmpl, map[string]string{
		"Type":       in.Type.String(),
		"UserName":   in.UserName,
		"Identifier": in.Identifier,
		"Summary":    in.Summary,
		"Language":   c.language,
	})
	if err != nil {
		return "", err
	}
	return c.complete(ctx, "creation_message", supportSystemPrompt, prompt, creationMaxTokens, 0.7)
}

func (c *Client) DraftResolutionMessage(ctx context.Context, in ResolutionInput) (string, error) {
	prompt, err := render(c.resolutionTmpl, map[string]string{
		"Type":            in.Type.String(),
		"UserName":        in.UserName,
		"OriginalContent": in.OriginalContent,
		"LatestComment":   in.LatestComment,
		"Identifier":      in.Identifier,
		"Language":        c.language,
	})
	if err != nil {
		return "", err
	}
	return c.complete(ctx, "resolution_message", resolutionSystemPrompt, prompt, resolutionMaxTokens, 0.7)
}

// genMetrics holds lazily-initialized OTel instruments for API calls.
var genMetrics struct {
	inputTokens  metric.Int64Counter
	outputTokens metric.Int64Counter
	duration     metric.Float64Histogram
}

var metricsOnce sync.Once

func initMetrics() {
	m := telemetry.Meter(instrumentationName)
	genMetrics.inputTokens, _ = m.Int64Counter("tracksync.textgen.input_tokens",
		metric.WithDescription("Anthropic API input tokens consumed"),
		metric.WithUnit("{token}"),
	)
	genMetrics.outputTokens, _ = m.Int64Counter("tracksync.textgen.output_tokens",
		metric.WithDescription("Anthropic API output tokens generated"),
		metric.WithUnit("{token}"),
	)
	genMetrics.duration, _ = m.Float64Histogram("tracksync.textgen.request.duration",
		metric.WithDescription("Anthropic API request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
}

// complete sends a single-turn conversation and returns the trimmed text
// of the first text block.
func (c *Client) complete(ctx context.Context, operation, system, prompt string, maxTokens int64, temperature float64) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ctx, span := telemetry.Tracer(instrumentationName).Start(ctx, "anthropic.messages.new")
	defer span.End()
	attrs := []attribute.KeyValue{
		attribute.String("tracksync.textgen.model", string(c.model)),
		attribute.String("tracksync.textgen.operation", operation),
	}
	span.SetAttributes(attrs...)

	start := time.Now()
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(temperature),
		System:      []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	ms := float64(time.Since(start).Milliseconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warnw("text generation request failed", "operation", operation, "error", err)
		return "", fmt.Errorf("textgen %s: %w", operation, err)
	}

	if genMetrics.inputTokens != nil {
		opt := metric.WithAttributes(attrs...)
		genMetrics.inputTokens.Add(ctx, message.Usage.InputTokens, opt)
		genMetrics.outputTokens.Add(ctx, message.Usage.OutputTokens, opt)
		genMetrics.duration.Record(ctx, ms, opt)
	}
	span.SetAttributes(
		attribute.Int64("tracksync.textgen.input_tokens", message.Usage.InputTokens),
		attribute.Int64("tracksync.textgen.output_tokens", message.Usage.OutputTokens),
	)

	for _, block := range message.Content {
		if block.Type == "text" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", fmt.Errorf("textgen %s: response has no text block", operation)
}

func render(tmpl *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", tmpl.Name(), err)
	}
	return sb.String(), nil
}

// extractJSON strips Markdown code fences and any prose around the outermost
// JSON object.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return text
	}
	return text[start : end+1]
}
