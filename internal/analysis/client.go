package analysis

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

	"github.com/tidwall/gjson"

	"github.com/detroitcommons/commons/internal/expense"
)

// ErrMalformedResult means the model's reply could not be interpreted as a
// receipt analysis at all. A partial-but-well-formed reply is not an error.
var ErrMalformedResult = errors.New("analysis result is not a JSON object")

const prompt = `You are given a photo of a purchase receipt. Reply with a single JSON object
and nothing else, using these keys where you can read them from the receipt:
"title" (short human label), "merchant", "category", "amount_cents" (integer,
minor currency units), "currency" (3-letter code), "date" (YYYY-MM-DD),
"notes", "confidence" (0..1). Omit any key you cannot determine.`

// Client calls an OpenAI-compatible chat-completions endpoint to extract
// structured fields from a receipt image. The output is best-effort and
// untrusted; the analysis call carries its own timeout since it is the least
// predictable dependency in the intake path.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func New(baseURL, apiKey, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageRef `json:"image_url,omitempty"`
}

type imageRef struct {
	URL string `json:"url"`
}

func (c *Client) AnalyzeReceipt(ctx context.Context, imageURL string) (*expense.ReceiptAnalysis, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &imageRef{URL: imageURL}},
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	content := gjson.GetBytes(body, "choices.0.message.content").String()

	return parseResult(content)
}

// parseResult interprets the model's reply. Models sometimes wrap the object
// in a markdown code fence; that is stripped before parsing. Anything that is
// not a JSON object after stripping is malformed and cannot be trusted.
func parseResult(content string) (*expense.ReceiptAnalysis, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	parsed := gjson.Parse(content)
	if !parsed.IsObject() {
		return nil, ErrMalformedResult
	}

	var result expense.ReceiptAnalysis

	result.Title = parsed.Get("title").String()

	if v := parsed.Get("merchant"); v.Exists() && v.String() != "" {
		s := v.String()
		result.Merchant = &s
	}

	if v := parsed.Get("category"); v.Exists() && v.String() != "" {
		s := v.String()
		result.Category = &s
	}

	if v := parsed.Get("notes"); v.Exists() && v.String() != "" {
		s := v.String()
		result.Notes = &s
	}

	if v := parsed.Get("amount_cents"); v.Exists() && v.Type == gjson.Number {
		cents := v.Int()
		result.AmountCents = &cents
	}

	result.Currency = strings.ToUpper(parsed.Get("currency").String())

	if v := parsed.Get("date"); v.Exists() {
		if d, err := time.Parse("2006-01-02", v.String()); err == nil {
			result.Date = &d
		}
	}

	if v := parsed.Get("confidence"); v.Exists() && v.Type == gjson.Number {
		conf := v.Float()
		result.Confidence = &conf
	}

	return &result, nil
}
