package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/kamuma03/Intel-agent/internal/reliability"
)

const (
	defaultGeminiModel   = "gemini-2.0-flash"
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	geminiRetryAttempts  = 2
)

// geminiRoles maps boundary roles to the generativelanguage API's labels;
// model-authored turns are called "model" there, not "assistant".
var geminiRoles = map[string]string{
	RoleUser:      "user",
	RoleAssistant: "model",
}

// GeminiProvider talks to the Google generativelanguage REST API directly;
// there is no vendor SDK in this codebase's dependency set.
type GeminiProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewGeminiProvider(apiKey, model, baseURL string) *GeminiProvider {
	if model == "" {
		model = defaultGeminiModel
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultGeminiBaseURL
	}
	if apiKey == "" {
		log.Printf("gemini provider: GOOGLE_API_KEY not set; replies will be degraded")
	}
	return &GeminiProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (p *GeminiProvider) Name() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (p *GeminiProvider) Generate(ctx context.Context, prompt string, history []Turn) (string, error) {
	if p.apiKey == "" {
		return missingKeyReply("Google", "GOOGLE_API_KEY"), nil
	}

	contents := make([]geminiContent, 0, len(history)+1)
	for _, t := range history {
		role, ok := geminiRoles[t.Role]
		if !ok {
			role = "user"
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: t.Content}}})
	}
	contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: prompt}}})

	payload, err := json.Marshal(geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}},
		Contents:          contents,
	})
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.baseURL, p.model)

	var lastErr error
	for attempt := 0; attempt < geminiRetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(reliability.ExponentialBackoff(attempt, 500*time.Millisecond, 5*time.Second)):
			}
		}

		text, retryable, err := p.doGenerate(ctx, url, payload)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
	}
	return "", lastErr
}

func (p *GeminiProvider) doGenerate(ctx context.Context, url string, payload []byte) (text string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", false, fmt.Errorf("create gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.apiKey)

	res, err := p.client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("send gemini request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		err := fmt.Errorf("gemini http status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
		return "", reliability.IsRetryableHTTPStatus(res.StatusCode), err
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", false, fmt.Errorf("read gemini response: %w", err)
	}

	var obj geminiResponse
	if err := json.Unmarshal(body, &obj); err != nil {
		return "", false, fmt.Errorf("decode gemini response: %w", err)
	}
	if len(obj.Candidates) == 0 {
		return "", false, fmt.Errorf("gemini response contained no candidates")
	}

	var out strings.Builder
	for _, part := range obj.Candidates[0].Content.Parts {
		out.WriteString(part.Text)
	}
	return out.String(), false, nil
}
