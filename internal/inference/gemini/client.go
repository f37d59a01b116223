package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/jwalitptl/prescription-api/internal/inference"
	"github.com/jwalitptl/prescription-api/pkg/circuitbreaker"
	apperrors "github.com/jwalitptl/prescription-api/pkg/errors"
)

const defaultModel = "gemini-2.5-pro"

// Client invokes Gemini's generateContent with an image part. One call per
// request, no retries; a failure is classified and surfaced immediately.
// A breaker sheds calls while the upstream is persistently failing.
type Client struct {
	apiKey  string
	model   string
	breaker *circuitbreaker.CircuitBreaker
}

func New(apiKey, model string) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{
		apiKey: strings.TrimSpace(apiKey),
		model:  strings.TrimSpace(model),
		breaker: circuitbreaker.New(circuitbreaker.Settings{
			Name:        "gemini",
			MaxFailures: 5,
			Cooldown:    30 * time.Second,
		}),
	}
}

func (c *Client) Configured() bool {
	return c.apiKey != ""
}

func (c *Client) Model() string {
	return c.model
}

func (c *Client) Invoke(ctx context.Context, prompt string, image inference.ImagePayload) (string, error) {
	if c.apiKey == "" {
		return "", apperrors.NewConfiguration("Gemini API key not configured", nil)
	}

	raw, err := base64.StdEncoding.DecodeString(image.Data)
	if err != nil {
		return "", apperrors.NewInference("invalid image encoding", err)
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return "", classifyRemote(err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(c.model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: ptrFloat32(0),
	}

	var resp *genai.GenerateContentResponse
	err = c.breaker.Execute(func() error {
		var callErr error
		resp, callErr = m.GenerateContent(ctx,
			genai.Text(prompt),
			&genai.Blob{MIMEType: image.MediaType, Data: raw},
		)
		return callErr
	})
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrOpen) {
			return "", apperrors.NewInference("inference temporarily unavailable", err)
		}
		return "", classifyRemote(err)
	}

	text := candidateText(resp)
	if text == "" {
		return "", apperrors.NewInference("model returned no content", nil)
	}
	return text, nil
}

func (c *Client) Ping(ctx context.Context) error {
	if c.apiKey == "" {
		return apperrors.NewConfiguration("Gemini API key not configured", nil)
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return classifyRemote(err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(c.model)
	if _, err := m.GenerateContent(ctx, genai.Text("Say hello")); err != nil {
		return classifyRemote(err)
	}
	return nil
}

// classifyRemote maps a Gemini transport or API failure to the pipeline
// taxonomy. Credential problems and missing-model responses both point at
// configuration; quota signals are distinguished so the caller can back off.
func classifyRemote(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return apperrors.NewConfiguration("invalid or missing Gemini API key", err)
		case http.StatusNotFound:
			return apperrors.NewConfiguration("model not available for this API key", err)
		case http.StatusTooManyRequests:
			return apperrors.NewRateLimited("API quota exceeded, please try again later", err)
		}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "quota") || strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "rate limit") {
		return apperrors.NewRateLimited("API quota exceeded, please try again later", err)
	}
	if strings.Contains(msg, "api key") {
		return apperrors.NewConfiguration("invalid or missing Gemini API key", err)
	}

	return apperrors.NewInference("inference request failed", err)
}

func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String())
}

func ptrFloat32(v float32) *float32 { return &v }
