package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
)

// Client is an HTTP client for the tagsheet API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	attempts   uint
	delay      time.Duration
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithRetry sets how many times idempotent requests are attempted and the
// initial backoff between attempts.
func WithRetry(attempts uint, delay time.Duration) ClientOption {
	return func(c *Client) {
		c.attempts = attempts
		c.delay = delay
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new API client.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute, // Large drawing sets take a while
		},
		attempts: 3,
		delay:    200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Download is a binary response body with its suggested file name.
type Download struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Get performs a GET request and decodes the JSON response.
// Transport failures and 502/503/504 responses are retried.
func (c *Client) Get(ctx context.Context, path string, result any) error {
	body, _, err := c.do(ctx, http.MethodGet, path, nil, "", true)
	if err != nil {
		return err
	}
	return decode(body, result)
}

// Post performs a POST request with JSON body and decodes the response.
func (c *Client) Post(ctx context.Context, path string, body any, result any) error {
	data, err := marshal(body)
	if err != nil {
		return err
	}
	respBody, _, err := c.do(ctx, http.MethodPost, path, data, "application/json", false)
	if err != nil {
		return err
	}
	return decode(respBody, result)
}

// PostFile uploads a file as multipart field "file" along with any extra
// form fields, and decodes the JSON response.
func (c *Client) PostFile(ctx context.Context, path, filePath string, fields map[string]string, result any) error {
	data, contentType, err := multipartBody(filePath, fields)
	if err != nil {
		return err
	}
	respBody, _, err := c.do(ctx, http.MethodPost, path, data, contentType, false)
	if err != nil {
		return err
	}
	return decode(respBody, result)
}

// DownloadFile uploads a file like PostFile and returns the raw response.
func (c *Client) DownloadFile(ctx context.Context, path, filePath string, fields map[string]string) (*Download, error) {
	data, contentType, err := multipartBody(filePath, fields)
	if err != nil {
		return nil, err
	}
	body, header, err := c.do(ctx, http.MethodPost, path, data, contentType, false)
	if err != nil {
		return nil, err
	}
	dl := &Download{ContentType: header.Get("Content-Type"), Data: body}
	if _, params, err := mime.ParseMediaType(header.Get("Content-Disposition")); err == nil {
		dl.FileName = params["filename"]
	}
	return dl, nil
}

// statusError is a non-2xx response.
type statusError struct {
	code int
	msg  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.code, e.msg)
}

func (e *statusError) temporary() bool {
	switch e.code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// do sends one request, retrying it when retryable is set.
func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string, retryable bool) ([]byte, http.Header, error) {
	var (
		respBody []byte
		header   http.Header
	)
	send := func() error {
		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		respBody, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		header = resp.Header
		return checkStatus(resp.StatusCode, respBody)
	}

	if !retryable || c.attempts <= 1 {
		err := send()
		return respBody, header, err
	}

	err := retry.Do(
		send,
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var se *statusError
			if errors.As(err, &se) {
				return se.temporary()
			}
			return ctx.Err() == nil
		}),
	)
	return respBody, header, err
}

func checkStatus(code int, body []byte) error {
	if code < 400 {
		return nil
	}
	var errResp ErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return &statusError{code: code, msg: errResp.Error}
	}
	return &statusError{code: code, msg: string(body)}
}

func marshal(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal body: %w", err)
	}
	return data, nil
}

func decode(body []byte, result any) error {
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func multipartBody(filePath string, fields map[string]string) ([]byte, string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("failed to write form file: %w", err)
	}
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

// ErrorResponse matches the server's error response format.
type ErrorResponse struct {
	Error string `json:"error"`
}
