package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yashrajoria/storefront/models"
)

// ErrUnauthorized is returned when the backend rejects the session token.
var ErrUnauthorized = errors.New("unauthorized")

// maxErrorBody caps how much of an upstream error body is kept.
const maxErrorBody = 512

// UpstreamError is a non-2xx answer from the backend.
type UpstreamError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: %s %s status=%d body=%s", e.Method, e.Path, e.Status, e.Body)
}

// Is lets 401/403 answers match ErrUnauthorized.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUnauthorized && (e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden)
}

// APIClient talks to the bookstore backend API.
type APIClient struct {
	baseURL string
	client  *http.Client
}

func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the configured backend root without a trailing slash.
func (a *APIClient) BaseURL() string {
	return a.baseURL
}

func (a *APIClient) Do(ctx context.Context, method, path string, query url.Values, headers http.Header, body io.Reader) (*http.Response, error) {
	u := a.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}

	for k, v := range headers {
		for _, vv := range v {
			req.Header.Add(k, vv)
		}
	}

	return a.client.Do(req)
}

// Fetch GETs path and returns the raw body of a 2xx answer.
func (a *APIClient) Fetch(ctx context.Context, path string) ([]byte, error) {
	resp, err := a.Do(ctx, http.MethodGet, path, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, http.MethodGet, path); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

// Categories lists the catalog categories.
func (a *APIClient) Categories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := a.getJSON(ctx, "/products/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Category{}
	}
	return out, nil
}

// Me returns the profile of the user owning token.
func (a *APIClient) Me(ctx context.Context, token string) (models.UserProfile, error) {
	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+token)

	var out models.UserProfile
	if err := a.getJSON(ctx, "/users/me", nil, headers, &out); err != nil {
		return models.UserProfile{}, err
	}
	return out, nil
}

// ProductQuery filters GET /products/.
type ProductQuery struct {
	Limit      int
	Offset     int
	CategoryID string
	Title      string
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	if q.Limit > 0 {
		v.Set("limit", fmt.Sprint(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", fmt.Sprint(q.Offset))
	}
	if q.CategoryID != "" {
		v.Set("category_id", q.CategoryID)
	}
	if q.Title != "" {
		v.Set("title", q.Title)
	}
	return v
}

// Products lists catalog products.
func (a *APIClient) Products(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	var out []models.Product
	if err := a.getJSON(ctx, "/products/", q.values(), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Product{}
	}
	return out, nil
}

func (a *APIClient) getJSON(ctx context.Context, path string, query url.Values, headers http.Header, out interface{}) error {
	if headers == nil {
		headers = http.Header{}
	}
	headers.Set("Accept", "application/json")

	resp, err := a.Do(ctx, http.MethodGet, path, query, headers, nil)
	if err != nil {
		return err
	}
	return DecodeJSON(resp, http.MethodGet, path, out)
}

// DecodeJSON closes resp and decodes a 2xx body into out.
func DecodeJSON(resp *http.Response, method, path string, out interface{}) error {
	defer resp.Body.Close()
	if err := checkStatus(resp, method, path); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func checkStatus(resp *http.Response, method, path string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &UpstreamError{Method: method, Path: path, Status: resp.StatusCode, Body: string(body)}
}
