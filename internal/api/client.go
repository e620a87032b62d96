package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrServer marks responses where the backend reported a failure.
var ErrServer = errors.New("server error")

// Client provides access to the player REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a player API client.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("api base url required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Products lists active products.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.get(ctx, "/api/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// RegisterUser submits a completed registration.
func (c *Client) RegisterUser(ctx context.Context, name, email, phone string) (*RegisterResult, error) {
	payload := map[string]string{"name": name, "email": email, "phone": phone}
	var result RegisterResult
	if err := c.post(ctx, "/api/user/register", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// LoadPresentation fetches the full section data for a product.
func (c *Client) LoadPresentation(ctx context.Context, productID int64) (*Presentation, error) {
	params := url.Values{}
	if productID > 0 {
		params.Set("product_id", strconv.FormatInt(productID, 10))
	}
	var presentation Presentation
	if err := c.get(ctx, "/api/presentation/load", params, &presentation); err != nil {
		return nil, err
	}
	if presentation.Status != "success" {
		message := presentation.Message
		if message == "" {
			message = "no presentation available"
		}
		return nil, fmt.Errorf("%w: load presentation: %s", ErrServer, message)
	}
	return &presentation, nil
}

// Interrupt signals that the user is typing and playback should yield.
func (c *Client) Interrupt(ctx context.Context) error {
	return c.post(ctx, "/api/presentation/interrupt", struct{}{}, nil)
}

// Chat sends a message and returns the assistant answer with references.
func (c *Client) Chat(ctx context.Context, message string, userID int64) (*ChatResponse, error) {
	payload := map[string]any{"message": message}
	if userID > 0 {
		payload["user_id"] = userID
	}
	var response ChatResponse
	if err := c.post(ctx, "/api/chat", payload, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Synthesize converts text to narration audio, decoding the base64 payload.
func (c *Client) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	payload := map[string]string{"text": text, "voice": voice}
	var response struct {
		Audio  string `json:"audio"`
		Format string `json:"format"`
	}
	if err := c.post(ctx, "/api/tts", payload, &response); err != nil {
		return nil, err
	}
	if response.Audio == "" {
		return nil, fmt.Errorf("%w: tts returned empty audio", ErrServer)
	}
	audio, err := base64.StdEncoding.DecodeString(response.Audio)
	if err != nil {
		return nil, fmt.Errorf("decode tts audio: %w", err)
	}
	return audio, nil
}

// ExtractInfo validates free-text registration input for a field.
func (c *Client) ExtractInfo(ctx context.Context, message, field string) (*Extraction, error) {
	payload := map[string]string{"message": message, "field": field}
	var extraction Extraction
	if err := c.post(ctx, "/api/extract-info", payload, &extraction); err != nil {
		return nil, err
	}
	return &extraction, nil
}

// Settings fetches the server-published playback defaults.
func (c *Client) Settings(ctx context.Context) (*Settings, error) {
	var settings Settings
	if err := c.get(ctx, "/api/settings", nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateSettings publishes new playback defaults to the server.
func (c *Client) UpdateSettings(ctx context.Context, settings Settings) error {
	body, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/api/settings", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail := readErrorDetail(resp.Body)
		if detail != "" {
			return fmt.Errorf("%w: %s %s returned %d: %s", ErrServer, req.Method, req.URL.Path, resp.StatusCode, detail)
		}
		return fmt.Errorf("%w: %s %s returned %d", ErrServer, req.Method, req.URL.Path, resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readErrorDetail extracts the backend's {"detail": ...} message when present.
func readErrorDetail(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Detail)
}
