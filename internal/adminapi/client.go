package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrUnauthorized marks a 401 from the backend; the session is over.
var ErrUnauthorized = errors.New("admin session rejected")

// ErrServer marks other failed responses.
var ErrServer = errors.New("admin server error")

// Client provides access to the admin REST API.
type Client struct {
	baseURL    string
	token      string
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

// New creates an admin API client. Token may be empty for login-only use.
func New(baseURL, token string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("adminapi base url required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      strings.TrimSpace(token),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	payload := map[string]string{"username": username, "password": password}
	var result LoginResult
	if err := c.request(ctx, http.MethodPost, "/admin/api/login", nil, payload, &result); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return nil, err
	}
	return &result, nil
}

// Products lists every product, inactive included.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.request(ctx, http.MethodGet, "/admin/api/products", nil, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Product fetches a single product.
func (c *Client) Product(ctx context.Context, id int64) (*Product, error) {
	var product Product
	if err := c.request(ctx, http.MethodGet, c.productPath(id, ""), nil, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct registers a new product.
func (c *Client) CreateProduct(ctx context.Context, name, slug, description string) (*CreateProductResult, error) {
	payload := map[string]string{"name": name, "slug": slug, "description": description}
	var result CreateProductResult
	if err := c.request(ctx, http.MethodPost, "/admin/api/products", nil, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.request(ctx, http.MethodDelete, c.productPath(id, ""), nil, nil, nil)
}

// UploadPDF uploads the source PDF for a product and starts processing.
func (c *Client) UploadPDF(ctx context.Context, id int64, pdfPath string) error {
	file, err := os.Open(pdfPath)
	if err != nil {
		return fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(pdfPath))
	if err != nil {
		return fmt.Errorf("build multipart form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("read pdf: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.productPath(id, "upload"), &body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)
	return c.do(req, nil)
}

// StartProcessing triggers processing of an already-uploaded PDF.
func (c *Client) StartProcessing(ctx context.Context, id int64) error {
	return c.request(ctx, http.MethodPost, c.productPath(id, "process"), nil, nil, nil)
}

// ProcessingStatus reads the current processing stage for a product.
func (c *Client) ProcessingStatus(ctx context.Context, id int64) (*ProcessingStatus, error) {
	var status ProcessingStatus
	if err := c.request(ctx, http.MethodGet, c.productPath(id, "status"), nil, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// PDFInfo describes the uploaded PDF for a product.
func (c *Client) PDFInfo(ctx context.Context, id int64) (*PDFInfo, error) {
	var info PDFInfo
	if err := c.request(ctx, http.MethodGet, c.productPath(id, "pdf-info"), nil, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// JSONContent fetches generated content for a product. Type is
// "presentation" or "analysis".
func (c *Client) JSONContent(ctx context.Context, id int64, jsonType string) (json.RawMessage, error) {
	var content json.RawMessage
	if err := c.request(ctx, http.MethodGet, c.productPath(id, "json/"+jsonType), nil, nil, &content); err != nil {
		return nil, err
	}
	return content, nil
}

// UpdateJSONContent replaces generated content for a product.
func (c *Client) UpdateJSONContent(ctx context.Context, id int64, jsonType string, content json.RawMessage) error {
	return c.request(ctx, http.MethodPut, c.productPath(id, "json/"+jsonType), nil, content, nil)
}

// Images lists extracted images for a product.
func (c *Client) Images(ctx context.Context, id int64, showDeleted bool) ([]Image, error) {
	params := url.Values{}
	if showDeleted {
		params.Set("show_deleted", "true")
	}
	var images []Image
	if err := c.request(ctx, http.MethodGet, c.productPath(id, "images"), params, nil, &images); err != nil {
		return nil, err
	}
	return images, nil
}

// DeleteImage soft-deletes an image by path.
func (c *Client) DeleteImage(ctx context.Context, path string) error {
	return c.request(ctx, http.MethodDelete, "/admin/api/images/"+escapeImagePath(path), nil, nil, nil)
}

// RestoreImage restores a soft-deleted image.
func (c *Client) RestoreImage(ctx context.Context, path string) error {
	return c.request(ctx, http.MethodPost, "/admin/api/images/"+escapeImagePath(path)+"/restore", nil, nil, nil)
}

// Users lists registered users, newest first.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.request(ctx, http.MethodGet, "/admin/api/users", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UserChat returns a user's stored chat history.
func (c *Client) UserChat(ctx context.Context, userID int64) ([]ChatMessage, error) {
	var messages []ChatMessage
	path := fmt.Sprintf("/admin/api/users/%d/chat", userID)
	if err := c.request(ctx, http.MethodGet, path, nil, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// DeleteUser removes a user and their chat history.
func (c *Client) DeleteUser(ctx context.Context, userID int64) error {
	return c.request(ctx, http.MethodDelete, fmt.Sprintf("/admin/api/users/%d", userID), nil, nil, nil)
}

// AnalyticsSummary fetches the dashboard aggregate.
func (c *Client) AnalyticsSummary(ctx context.Context) (*AnalyticsSummary, error) {
	var summary AnalyticsSummary
	if err := c.request(ctx, http.MethodGet, "/admin/api/analytics/summary", nil, nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// RecentActivity fetches the latest analytics events.
func (c *Client) RecentActivity(ctx context.Context) ([]ActivityEvent, error) {
	var events []ActivityEvent
	if err := c.request(ctx, http.MethodGet, "/admin/api/analytics/recent", nil, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Settings fetches the raw settings map.
func (c *Client) Settings(ctx context.Context) (Settings, error) {
	var settings Settings
	if err := c.request(ctx, http.MethodGet, "/admin/api/settings", nil, nil, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// UpdateSettings applies the provided settings fields.
func (c *Client) UpdateSettings(ctx context.Context, update SettingsUpdate) error {
	return c.request(ctx, http.MethodPut, "/admin/api/settings", nil, update, nil)
}

func (c *Client) productPath(id int64, suffix string) string {
	path := "/admin/api/products/" + strconv.FormatInt(id, 10)
	if suffix != "" {
		path += "/" + suffix
	}
	return path
}

func (c *Client) request(ctx context.Context, method, path string, params url.Values, payload, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)
	return c.do(req, out)
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
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

// escapeImagePath keeps slashes intact while escaping other characters; the
// backend matches the image by its stored relative path.
func escapeImagePath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
