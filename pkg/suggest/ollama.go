package suggest

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/tidwall/gjson"

	"github.com/menta2k/image-selector/pkg/imageio"
	"github.com/menta2k/image-selector/pkg/types"
)

// DefaultPrompt asks the model for the box of the dominant subject
const DefaultPrompt = `You are an image subject locator.

Return JSON only:
{
  "primary": {
    "label": "string",
    "confidence": 0.0,
    "box": {"x": 0.0, "y": 0.0, "w": 0.0, "h": 0.0}
  }
}

HARD RULES
- All coordinates are normalized to [0,1] (NOT pixels). x,y is the top-left corner.
- The box should tightly include the visually dominant subject (prefer people/vehicles/animals; else the most central salient object).
- If no subject is found, return {"primary":{"label":"none","confidence":0.0,"box":{"x":0,"y":0,"w":0,"h":0}}}
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// ChatClient is the part of the Ollama API client used for suggestions
type ChatClient interface {
	Chat(ctx context.Context, req *api.ChatRequest, fn api.ChatResponseFunc) error
}

// OllamaConfig holds configuration for the Ollama suggester
type OllamaConfig struct {
	Model         string
	Prompt        string
	SendSize      int
	SendQuality   int
	Timeout       time.Duration
	MinConfidence float64
}

// DefaultOllamaConfig returns the defaults for model
func DefaultOllamaConfig(model string) OllamaConfig {
	return OllamaConfig{
		Model:         model,
		Prompt:        DefaultPrompt,
		SendSize:      1536,
		SendQuality:   85,
		Timeout:       300 * time.Second,
		MinConfidence: 0.05,
	}
}

// OllamaSuggester asks a vision model where the subject is
type OllamaSuggester struct {
	client ChatClient
	codec  *imageio.Codec
	config OllamaConfig
}

// NewOllamaSuggester creates a suggester talking to the server at rawURL.
// Any path in rawURL (such as /api/chat) is ignored.
func NewOllamaSuggester(rawURL string, config OllamaConfig) (*OllamaSuggester, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid URL: %q needs a scheme and host", rawURL)
	}

	baseURL := &url.URL{Scheme: parsedURL.Scheme, Host: parsedURL.Host}
	return NewOllamaSuggesterWithClient(api.NewClient(baseURL, http.DefaultClient), config), nil
}

// NewOllamaSuggesterWithClient creates a suggester using client
func NewOllamaSuggesterWithClient(client ChatClient, config OllamaConfig) *OllamaSuggester {
	if config.Prompt == "" {
		config.Prompt = DefaultPrompt
	}
	if config.SendQuality < 1 || config.SendQuality > 100 {
		config.SendQuality = 85
	}
	return &OllamaSuggester{client: client, codec: imageio.NewCodec(), config: config}
}

// Suggest sends img to the model and returns the primary subject box
func (s *OllamaSuggester) Suggest(ctx context.Context, img image.Image) (types.Box, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	var buf bytes.Buffer
	if err := s.codec.Encode(&buf, imageio.Shrink(img, s.config.SendSize), "jpg", s.config.SendQuality, false); err != nil {
		return types.Box{}, fmt.Errorf("failed to encode image: %w", err)
	}

	streamFalse := false
	req := &api.ChatRequest{
		Model: s.config.Model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: s.config.Prompt,
				Images:  []api.ImageData{api.ImageData(buf.Bytes())},
			},
		},
		Stream:  &streamFalse,
		Options: modelOptions(s.config.Model),
	}

	var content strings.Builder
	err := s.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return types.Box{}, fmt.Errorf("ollama chat error: %w", err)
	}
	if content.Len() == 0 {
		return types.Box{}, fmt.Errorf("empty response from ollama")
	}

	return parseBox(content.String(), s.config.MinConfidence)
}

// modelOptions tunes sampling for MiniCPM-V 4.x models
func modelOptions(model string) map[string]any {
	options := map[string]any{}
	m := strings.ToLower(model)
	if strings.Contains(m, "minicpm-v4") || strings.Contains(m, "minicpm-v-4") || strings.Contains(m, "minicpmv4") {
		options["temperature"] = 0.7
		options["top_p"] = 0.8
		options["num_ctx"] = 4096
	}
	return options
}

// parseBox extracts primary.box from a model reply
func parseBox(raw string, minConfidence float64) (types.Box, error) {
	raw = sanitizeModelJSON(raw)
	if !gjson.Valid(raw) {
		return types.Box{}, fmt.Errorf("model returned non-JSON response: %q", truncate(raw, 80))
	}

	primary := gjson.Get(raw, "primary")
	if !primary.Exists() {
		return types.Box{}, fmt.Errorf("model response has no primary subject")
	}
	if strings.EqualFold(primary.Get("label").String(), "none") {
		return types.Box{}, ErrNoSubject
	}
	if c := primary.Get("confidence"); c.Exists() && c.Float() < minConfidence {
		return types.Box{}, ErrNoSubject
	}

	box := types.Box{
		X: primary.Get("box.x").Float(),
		Y: primary.Get("box.y").Float(),
		W: primary.Get("box.w").Float(),
		H: primary.Get("box.h").Float(),
	}.Clamp()
	if box.W == 0 || box.H == 0 {
		return types.Box{}, ErrNoSubject
	}
	return box, nil
}

var (
	reBlockComment  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reLineComment   = regexp.MustCompile(`(?m)//.*$`)
	reTrailingComma = regexp.MustCompile(`,(\s*[}\]])`)
)

// sanitizeModelJSON removes code fences, comments and trailing commas and
// keeps the outermost object
func sanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.Trim(strings.TrimSpace(raw), "`")

	raw = reBlockComment.ReplaceAllString(raw, "")
	raw = reLineComment.ReplaceAllString(raw, "")
	raw = reTrailingComma.ReplaceAllString(raw, "$1")

	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
