package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"smartcite/models"
)

// HTTPGateway is the live Gateway implementation over the SmartCité
// HTTP API. It keeps the bearer token obtained at sign-in and attaches
// it to every authenticated call.
type HTTPGateway struct {
	baseURL string
	apiKey  string
	http    *http.Client

	mu    sync.Mutex
	token string
}

var _ Gateway = (*HTTPGateway)(nil)

// NewHTTPGateway builds a gateway against the given endpoint.
func NewHTTPGateway(baseURL, apiKey string) *HTTPGateway {
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// NewHTTPGatewayFromEnv reads the two connection parameters supplied at
// process start: SMARTCITE_API_URL and SMARTCITE_API_KEY.
func NewHTTPGatewayFromEnv() (*HTTPGateway, error) {
	baseURL := os.Getenv("SMARTCITE_API_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("SMARTCITE_API_URL environment variable is not set")
	}
	return NewHTTPGateway(baseURL, os.Getenv("SMARTCITE_API_KEY")), nil
}

func (g *HTTPGateway) setToken(token string) {
	g.mu.Lock()
	g.token = token
	g.mu.Unlock()
}

func (g *HTTPGateway) bearer() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.token
}

// do sends a JSON request and decodes a JSON response. Non-2xx answers
// become a DomainError carrying the server's message; a 401 maps to
// ErrNotAuthenticated.
func (g *HTTPGateway) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return g.send(req, out)
}

func (g *HTTPGateway) send(req *http.Request, out interface{}) error {
	if g.apiKey != "" {
		req.Header.Set("X-API-Key", g.apiKey)
	}
	if token := g.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", ErrNotAuthenticated, serverMessage(resp.Body))
	}
	if resp.StatusCode >= 400 {
		return domainErrorf(resp.StatusCode, "%s", serverMessage(resp.Body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func serverMessage(body io.Reader) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil || payload.Error == "" {
		return "request rejected"
	}
	return payload.Error
}

func (g *HTTPGateway) SignUp(ctx context.Context, email, password, username string) (Identity, error) {
	input := map[string]string{"email": email, "password": password, "username": username}
	var resp struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := g.do(ctx, http.MethodPost, "/api/auth/register", input, &resp); err != nil {
		return Identity{}, err
	}
	return Identity{ID: resp.ID, Email: resp.Email}, nil
}

func (g *HTTPGateway) SignIn(ctx context.Context, username, password string) (Identity, error) {
	input := map[string]string{"username": username, "password": password}
	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := g.do(ctx, http.MethodPost, "/api/auth/login", input, &resp); err != nil {
		return Identity{}, err
	}
	g.setToken(resp.Token)
	return Identity{ID: resp.User.ID, Email: resp.User.Email}, nil
}

func (g *HTTPGateway) SignOut(ctx context.Context) error {
	err := g.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	// drop the token even when the remote call failed
	g.setToken("")
	return err
}

func (g *HTTPGateway) CurrentIdentity(ctx context.Context) (Identity, error) {
	if g.bearer() == "" {
		return Identity{}, ErrNotAuthenticated
	}
	var resp Identity
	if err := g.do(ctx, http.MethodGet, "/api/auth/me", nil, &resp); err != nil {
		return Identity{}, err
	}
	return resp, nil
}

func (g *HTTPGateway) FetchProfile(ctx context.Context, username string) (models.Profile, error) {
	var resp struct {
		Profile models.Profile `json:"profile"`
	}
	if err := g.do(ctx, http.MethodGet, "/api/profile/"+url.PathEscape(username), nil, &resp); err != nil {
		return models.Profile{}, err
	}
	return resp.Profile, nil
}

func (g *HTTPGateway) UpdateProfile(ctx context.Context, fields ProfileFields) (models.Profile, error) {
	var resp struct {
		Profile models.Profile `json:"profile"`
	}
	if err := g.do(ctx, http.MethodPut, "/api/profile/", fields, &resp); err != nil {
		return models.Profile{}, err
	}
	return resp.Profile, nil
}

func (g *HTTPGateway) UpdateAuthEmail(ctx context.Context, email string) error {
	return g.do(ctx, http.MethodPut, "/api/auth/email", map[string]string{"email": email}, nil)
}

func (g *HTTPGateway) ListCategories(ctx context.Context) ([]models.Category, error) {
	var resp struct {
		Categories []models.Category `json:"categories"`
	}
	if err := g.do(ctx, http.MethodGet, "/api/category/all", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

func (g *HTTPGateway) ListReports(ctx context.Context) ([]models.Report, error) {
	var resp struct {
		Reports []models.Report `json:"reports"`
	}
	if err := g.do(ctx, http.MethodGet, "/api/report/all", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Reports, nil
}

// ListReportsByOwner reads the owner's reports. The owner is derived
// from the bearer token server-side; the ID parameter documents intent
// at the call site.
func (g *HTTPGateway) ListReportsByOwner(ctx context.Context, _ string) ([]models.Report, error) {
	var resp struct {
		Reports []models.Report `json:"reports"`
	}
	if err := g.do(ctx, http.MethodGet, "/api/report/mine", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Reports, nil
}

func (g *HTTPGateway) CreateReport(ctx context.Context, fields ReportFields) (models.Report, error) {
	var report models.Report
	if err := g.do(ctx, http.MethodPost, "/api/report/create", fields, &report); err != nil {
		return models.Report{}, err
	}
	return report, nil
}

func (g *HTTPGateway) UpdateReport(ctx context.Context, id string, fields ReportFields) error {
	return g.do(ctx, http.MethodPut, "/api/report/"+url.PathEscape(id), fields, nil)
}

func (g *HTTPGateway) DeleteReport(ctx context.Context, id string) error {
	return g.do(ctx, http.MethodDelete, "/api/report/"+url.PathEscape(id), nil, nil)
}

func (g *HTTPGateway) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	var resp struct {
		Notifications []models.Notification `json:"notifications"`
	}
	if err := g.do(ctx, http.MethodGet, "/api/notification/all", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Notifications, nil
}

func (g *HTTPGateway) ListNotificationsByOwner(ctx context.Context, _ string) ([]models.Notification, error) {
	var resp struct {
		Notifications []models.Notification `json:"notifications"`
	}
	if err := g.do(ctx, http.MethodGet, "/api/notification/mine", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Notifications, nil
}

func (g *HTTPGateway) MarkNotificationsRead(ctx context.Context) error {
	return g.do(ctx, http.MethodPost, "/api/notification/read", nil, nil)
}

func (g *HTTPGateway) UploadImage(ctx context.Context, data []byte, path, mimeType string) (string, error) {
	endpoint := g.baseURL + "/api/storage/upload?path=" + url.QueryEscape(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	if mimeType != "" {
		req.Header.Set("Content-Type", mimeType)
	}

	var resp struct {
		PublicURL string `json:"publicUrl"`
	}
	if err := g.send(req, &resp); err != nil {
		return "", err
	}
	return resp.PublicURL, nil
}

func (g *HTTPGateway) DeleteImage(ctx context.Context, path string) error {
	return g.do(ctx, http.MethodDelete, "/api/storage/?path="+url.QueryEscape(path), nil, nil)
}
