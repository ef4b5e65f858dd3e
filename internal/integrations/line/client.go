// Package line pushes the goal response to the user's companion LINE chat
// through the Messaging API.
package line

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"clothcheck-skill/internal/domain"
	"clothcheck-skill/internal/integrations/paramstore"
)

const defaultBaseURL = "https://api.line.me"

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("line: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Message shapes for the push endpoint, narrowed to the two kinds the skill
// sends.
type imageMessage struct {
	Type               string `json:"type"`
	OriginalContentURL string `json:"originalContentUrl"`
	PreviewImageURL    string `json:"previewImageUrl"`
}

type templateMessage struct {
	Type     string          `json:"type"`
	AltText  string          `json:"altText"`
	Template buttonsTemplate `json:"template"`
}

type buttonsTemplate struct {
	Type    string           `json:"type"`
	Text    string           `json:"text"`
	Actions []postbackAction `json:"actions"`
}

type postbackAction struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Data  string `json:"data"`
}

type pushRequest struct {
	To       string `json:"to"`
	Messages []any  `json:"messages"`
}

// Client pushes rating prompts over the LINE Messaging API. The channel
// access token is fetched from SSM on first use and cached per process.
type Client struct {
	baseURL      string
	assetBaseURL string
	httpClient   *http.Client
	getter       paramstore.Getter
	paramPrefix  string

	tokenOnce sync.Once
	token     string
	tokenErr  error
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a push client. assetBaseURL is where the companion
// images are served from.
func NewClient(ps paramstore.Getter, paramPrefix, assetBaseURL string, opts ...Option) (*Client, error) {
	if ps == nil {
		return nil, errors.New("line: paramstore getter must not be nil")
	}
	paramPrefix = strings.TrimRight(strings.TrimSpace(paramPrefix), "/")
	if paramPrefix == "" {
		return nil, errors.New("line: parameter prefix must not be empty")
	}
	assetBaseURL = strings.TrimRight(strings.TrimSpace(assetBaseURL), "/")
	if assetBaseURL == "" {
		return nil, errors.New("line: asset base URL must not be empty")
	}
	c := &Client{
		baseURL:      defaultBaseURL,
		assetBaseURL: assetBaseURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		getter:       ps,
		paramPrefix:  paramPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) resolveToken(ctx context.Context) (string, error) {
	c.tokenOnce.Do(func() {
		c.token, c.tokenErr = paramstore.Token(ctx, c.getter, c.paramPrefix+"/line-channel-token")
	})
	return c.token, c.tokenErr
}

// PushRatingPrompt sends the goal response to the user's chat: an optional
// photo of what they wore, then a buttons template offering to revise the
// rating later. One push request per call, no retries.
// The rating itself is not echoed in the chat message; the prompt always
// offers all three choices.
func (c *Client) PushRatingPrompt(ctx context.Context, userID string, temperature int, _ domain.Rating, withImage bool) error {
	if userID == "" {
		return errors.New("line: user id must not be empty")
	}

	token, err := c.resolveToken(ctx)
	if err != nil {
		return err
	}

	messages := make([]any, 0, 2)
	if withImage {
		// The asset pipeline only publishes the sample images today, so the
		// URLs are fixed regardless of which rating owns the image.
		messages = append(messages, imageMessage{
			Type:               "image",
			OriginalContentURL: c.assetBaseURL + "/sample.jpg",
			PreviewImageURL:    c.assetBaseURL + "/sample-preview.jpg",
		})
	}
	messages = append(messages, ratingPrompt(temperature))

	body, err := json.Marshal(pushRequest{To: userID, Messages: messages})
	if err != nil {
		return fmt.Errorf("line: marshal push request: %w", err)
	}

	reqURL := strings.TrimRight(c.baseURL, "/") + "/v2/bot/message/push"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("line: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("line: push request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return &HTTPStatusError{StatusCode: res.StatusCode, URL: reqURL, Body: string(buf)}
	}
	return nil
}

// ratingPrompt builds the buttons template letting the user revise the
// rating for this temperature from chat.
func ratingPrompt(temperature int) templateMessage {
	text := fmt.Sprintf("To update how %d degrees felt, pick one below.", temperature)
	actions := make([]postbackAction, 0, 3)
	for _, r := range []domain.Rating{domain.RatingHot, domain.RatingCold, domain.RatingGood} {
		actions = append(actions, postbackAction{
			Type:  "postback",
			Label: r.Label(),
			Data:  fmt.Sprintf("%d&%s", temperature, r),
		})
	}
	return templateMessage{
		Type:    "template",
		AltText: text,
		Template: buttonsTemplate{
			Type:    "buttons",
			Text:    text,
			Actions: actions,
		},
	}
}
