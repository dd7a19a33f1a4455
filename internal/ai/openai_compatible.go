package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrModelUnavailable wraps every failure to obtain a reply from the model:
// transport errors, timeouts, non-2xx statuses (quota included) and empty replies.
var ErrModelUnavailable = errors.New("model unavailable")

type ChatMessage struct {
	Role       string
	Content    string
	Attachment *Attachment
}

// Attachment is a binary payload sent alongside a user turn.
type Attachment struct {
	MediaType string
	Name      string
	Data      []byte
}

type ChatConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// OpenAICompatibleClient is safe for concurrent use; one instance is shared
// by every pipeline in the process.
type OpenAICompatibleClient struct {
	httpClient *http.Client
}

func NewOpenAICompatibleClient(timeout time.Duration) *OpenAICompatibleClient {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &OpenAICompatibleClient{
		httpClient: &http.Client{Timeout: timeout},
	}
}

type wireMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

func (c *OpenAICompatibleClient) Complete(ctx context.Context, cfg ChatConfig, messages []ChatMessage) (string, error) {
	wire := make([]wireMessage, 0, len(messages))
	for _, m := range messages {
		wire = append(wire, toWire(m))
	}
	reqBody := map[string]interface{}{
		"model":    cfg.Model,
		"messages": wire,
		"stream":   false,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal llm request failed: %w", err)
	}

	url := strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("build llm request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: llm request failed: %v", ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read llm response failed: %v", ErrModelUnavailable, err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: llm response status %d: %s", ErrModelUnavailable, resp.StatusCode, string(raw))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: parse llm json failed: %v", ErrModelUnavailable, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: empty llm choices", ErrModelUnavailable)
	}
	return parsed.Choices[0].Message.Content, nil
}

// toWire renders a message in the chat completions shape. Messages without an
// attachment keep the plain string content.
func toWire(m ChatMessage) wireMessage {
	if m.Attachment == nil || len(m.Attachment.Data) == 0 {
		return wireMessage{Role: m.Role, Content: m.Content}
	}

	parts := make([]map[string]any, 0, 2)
	if strings.TrimSpace(m.Content) != "" {
		parts = append(parts, map[string]any{"type": "text", "text": m.Content})
	}
	parts = append(parts, attachmentPart(m.Attachment))
	return wireMessage{Role: m.Role, Content: parts}
}

func attachmentPart(a *Attachment) map[string]any {
	mediaType := strings.ToLower(strings.TrimSpace(a.MediaType))
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}

	switch {
	case isTextual(mediaType):
		return map[string]any{"type": "text", "text": string(a.Data)}
	case strings.HasPrefix(mediaType, "image/"):
		return map[string]any{
			"type":      "image_url",
			"image_url": map[string]any{"url": dataURL(mediaType, a.Data)},
		}
	default:
		name := a.Name
		if name == "" {
			name = "upload"
		}
		return map[string]any{
			"type": "file",
			"file": map[string]any{
				"filename":  name,
				"file_data": dataURL(mediaType, a.Data),
			},
		}
	}
}

func isTextual(mediaType string) bool {
	if strings.HasPrefix(mediaType, "text/") {
		return true
	}
	switch mediaType {
	case "application/json", "application/xml", "application/x-yaml", "application/yaml":
		return true
	}
	return false
}

func dataURL(mediaType string, data []byte) string {
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
