package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kaptinlin/jsonrepair"
	"go.uber.org/zap"
)

// Operation selects the text transformation the model performs. The rest of
// the system treats the output as opaque text; generated template code goes
// through the same validation pipeline as hand-written code.
type Operation string

const (
	OperationGenerate  Operation = "generate"
	OperationGrammar   Operation = "grammar"
	OperationImprove   Operation = "improve"
	OperationTranslate Operation = "translate"
)

var serviceBases = map[string]string{
	"openai":     "https://api.openai.com/v1",
	"openrouter": "https://openrouter.ai/api/v1",
	"groq":       "https://api.groq.com/openai/v1",
}

var defaultModels = map[string]string{
	"openai":     "gpt-4o-mini",
	"openrouter": "openai/gpt-4o-mini",
	"groq":       "llama-3.1-70b-versatile",
}

// Client talks to OpenAI-compatible chat-completion endpoints.
type Client struct {
	httpClient *http.Client
	customBase string
	logger     *zap.Logger
}

func NewClient(customBase string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		customBase: customBase,
		logger:     logger,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate asks the configured service to transform text and returns one or
// more candidates. field and contextStr steer the prompt for form-field
// operations; for OperationGenerate the text is the template description and
// the single candidate is raw template source.
func (c *Client) Generate(ctx context.Context, apiKey, service, text, field, contextStr string, op Operation, model string) ([]string, error) {
	if apiKey == "" {
		return nil, errors.New("an API key is required for AI features")
	}
	base := serviceBases[service]
	if base == "" {
		if service == "custom" || service == "" {
			base = c.customBase
		}
		if base == "" {
			return nil, fmt.Errorf("unsupported AI service %q", service)
		}
	}
	if model == "" {
		model = defaultModels[service]
		if model == "" {
			model = "gpt-4o-mini"
		}
	}

	system, user := buildPrompt(op, text, field, contextStr)
	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return nil, err
	}

	reqID := uuid.NewString()
	c.logger.Debug("ai request", zap.String("id", reqID),
		zap.String("service", service), zap.String("operation", string(op)))

	resp, err := c.doPostWithRetry(ctx, base+"/chat/completions", apiKey, body)
	if err != nil {
		return nil, fmt.Errorf("AI service unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("ai request failed", zap.String("id", reqID), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("AI service returned status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("unreadable AI response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New("AI response contained no choices")
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)

	if op == OperationGenerate {
		return []string{StripFences(content)}, nil
	}
	return splitCandidates(content), nil
}

// doPostWithRetry posts with exponential backoff; network errors and
// 429/5xx responses are retried.
func (c *Client) doPostWithRetry(ctx context.Context, url, apiKey string, body []byte) (*http.Response, error) {
	attempts := 3
	var lastErr error
	for i := 0; i < attempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+apiKey)

		resp, err := c.httpClient.Do(req)
		if err == nil && resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
			return resp, nil
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp.Body.Close()
		}
		if i < attempts-1 {
			backoff := time.Duration(1<<i) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}

// splitCandidates accepts either a JSON array of strings or plain text.
// Models frequently emit slightly broken JSON, so a repair pass runs before
// giving up on the array form.
func splitCandidates(content string) []string {
	trimmed := StripFences(content)
	if strings.HasPrefix(trimmed, "[") {
		var arr []string
		if err := json.Unmarshal([]byte(trimmed), &arr); err == nil {
			return nonEmpty(arr)
		}
		if fixed, err := jsonrepair.JSONRepair(trimmed); err == nil {
			var arr []string
			if err := json.Unmarshal([]byte(fixed), &arr); err == nil {
				return nonEmpty(arr)
			}
		}
	}
	return []string{trimmed}
}

// StripFences removes a surrounding markdown code fence, if any.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		// drop the language tag line
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	if len(out) == 0 {
		return []string{""}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func buildPrompt(op Operation, text, field, contextStr string) (system, user string) {
	switch op {
	case OperationGenerate:
		system = "You write resume templates as a single JavaScript expression of nested React.createElement calls. " +
			"Only the following bindings exist: React, personalInfo, workExperience, education, skills, projects, templateColors. " +
			"Iterate every list with .map and give each element a key. Use safeRender(value) for anything that might be an object. " +
			"Return only the code, starting with 'return', no commentary."
		user = "Template description: " + text
		if contextStr != "" {
			user += "\nStyle preferences: " + contextStr
		}
	case OperationGrammar:
		system = "You correct grammar and spelling in resume text without changing meaning or tone. " +
			"Return a JSON array with one corrected version."
		user = promptWithField(text, field, contextStr)
	case OperationImprove:
		system = "You rewrite resume text to be more impactful and concise. " +
			"Return a JSON array of up to three alternative versions."
		user = promptWithField(text, field, contextStr)
	case OperationTranslate:
		system = "You translate resume text, keeping professional register. " +
			"Return a JSON array with one translation."
		user = promptWithField(text, field, contextStr)
	default:
		system = "You are a helpful resume-writing assistant. Return a JSON array of suggestions."
		user = promptWithField(text, field, contextStr)
	}
	return system, user
}

func promptWithField(text, field, contextStr string) string {
	var sb strings.Builder
	if field != "" {
		sb.WriteString("Field: " + field + "\n")
	}
	if contextStr != "" {
		sb.WriteString("Context: " + contextStr + "\n")
	}
	sb.WriteString("Text:\n" + text)
	return sb.String()
}
