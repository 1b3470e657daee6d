package compare

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var ErrMissingImage = errors.New("two non-empty images are required")

// Image is one upload. Name is sent as the multipart filename.
type Image struct {
	Name string
	Data []byte
}

// ServiceError is the backend's {"error": "..."} reply.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("compare api error: status=%d error=%s", e.Status, e.Message)
}

// Client calls the background-comparison backend.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	logger  *zap.Logger

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.defaultTimeout = d
		}
	}
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDial replaces the transport dialer; tests use an in-memory listener.
func WithDial(dial func(addr string) (net.Conn, error)) Option {
	return func(c *Client) { c.http.Dial = dial }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &fasthttp.Client{
			ReadTimeout:         60 * time.Second,
			WriteTimeout:        30 * time.Second,
			MaxConnsPerHost:     8,
			MaxResponseBodySize: 64 << 20,
		},
		logger:         zap.NewNop(),
		defaultTimeout: 60 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(c.baseURL + "/api/health")

	var out Health
	if err := c.do(ctx, req, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// Compare uploads both images as image1/image2 and decodes the scores.
func (c *Client) Compare(ctx context.Context, first, second Image) (*Result, error) {
	if len(first.Data) == 0 || len(second.Data) == 0 {
		return nil, ErrMissingImage
	}
	body, contentType, err := buildForm(first, second)
	if err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI(c.baseURL + "/api/compare-backgrounds")
	req.Header.SetContentType(contentType)
	req.SetBody(body)

	started := time.Now()
	var out Result
	if err := c.do(ctx, req, &out, false); err != nil {
		return nil, err
	}
	c.logger.Info("compare_completed",
		zap.Int("percent", out.Percent()),
		zap.String("tier", string(out.Tier())),
		zap.Duration("elapsed", time.Since(started)),
	)
	return &out, nil
}

// CompareFiles reads both paths and calls Compare.
func (c *Client) CompareFiles(ctx context.Context, path1, path2 string) (*Result, error) {
	a, err := readImage(path1)
	if err != nil {
		return nil, err
	}
	b, err := readImage(path2)
	if err != nil {
		return nil, err
	}
	return c.Compare(ctx, a, b)
}

func readImage(path string) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("read image: %w", err)
	}
	return Image{Name: filepath.Base(path), Data: data}, nil
}

func buildForm(first, second Image) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := [2]string{"image1", "image2"}
	for i, img := range [2]Image{first, second} {
		field := fields[i]
		name := strings.TrimSpace(img.Name)
		if name == "" {
			name = field
		}
		part, err := w.CreateFormFile(field, name)
		if err != nil {
			return nil, "", fmt.Errorf("create form file: %w", err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", fmt.Errorf("write form file: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func (c *Client) do(ctx context.Context, req *fasthttp.Request, out any, retry bool) error {
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	attempts := 1
	if retry && c.retryMax > 1 {
		attempts = c.retryMax
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
		} else if status := resp.StatusCode(); status < 200 || status >= 300 {
			lastErr = decodeServiceError(status, resp.Body())
			if !shouldRetryStatus(status) {
				return lastErr
			}
		} else {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			return nil
		}

		if attempt == attempts {
			break
		}
		if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
			break
		}
	}
	return lastErr
}

func decodeServiceError(status int, body []byte) *ServiceError {
	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		msg = payload.Error
	}
	if len(msg) > 512 {
		msg = msg[:512]
	}
	return &ServiceError{Status: status, Message: msg}
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
