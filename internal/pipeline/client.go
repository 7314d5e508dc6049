package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Renan-T/chart-auto-magic/internal/metrics"
	"github.com/Renan-T/chart-auto-magic/internal/models"
)

const (
	pathPipeline = "/api/pipeline/auto"
	pathLatest   = "/api/dash/latest/"
	pathHealth   = "/api/health"

	// maxErrorBody bounds how much of a failed response ends up in RequestError.
	maxErrorBody = 64 << 10
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient returns the transport for backend calls. A zero timeout leaves
// requests bounded only by their context.
func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &http.Client{Timeout: timeout}
}

// Upload is the spreadsheet handed to the pipeline.
type Upload struct {
	Name string
	Body io.Reader
}

// Options are the optional multipart fields. Zero values are not sent.
type Options struct {
	Model       string
	AggMode     string
	DropAllZero *bool
}

// Client talks to the pipeline backend. It does not retry.
type Client struct {
	base string
	c    HTTPClient
	m    *metrics.Metrics
	log  *slog.Logger
}

func New(baseURL string, c HTTPClient, m *metrics.Metrics, log *slog.Logger) *Client {
	if c == nil {
		c = NewHTTPClient(0)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), c: c, m: m, log: log}
}

func (cl *Client) BaseURL() string { return cl.base }

// Submit uploads a spreadsheet and returns the generated dashboard.
func (cl *Client) Submit(ctx context.Context, up Upload, opts *Options) (*models.PipelineResponse, error) {
	if up.Body == nil {
		return nil, errors.New("pipeline submit: empty file")
	}
	body, contentType, err := encodeUpload(up, opts)
	if err != nil {
		return nil, fmt.Errorf("pipeline submit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cl.base+pathPipeline, body)
	if err != nil {
		return nil, fmt.Errorf("pipeline submit: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	var out models.PipelineResponse
	if err := cl.do(req, "submit", &out); err != nil {
		return nil, err
	}
	cl.log.Info("pipeline done",
		slog.String("file", up.Name),
		slog.String("dataset_id", out.DatasetID),
		slog.String("normalized_dataset_id", out.NormalizedDatasetID),
		slog.Int("stages", len(out.Stages)))
	return &out, nil
}

// Latest fetches the most recent dashboard for a normalized dataset id.
func (cl *Client) Latest(ctx context.Context, normalizedID string) (*models.DashboardDoc, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cl.base+pathLatest+url.PathEscape(normalizedID), nil)
	if err != nil {
		return nil, fmt.Errorf("pipeline latest: %w", err)
	}
	var doc models.DashboardDoc
	if err := cl.do(req, "latest", &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Health checks that the backend answers with a 2xx.
func (cl *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cl.base+pathHealth, nil)
	if err != nil {
		return fmt.Errorf("pipeline health: %w", err)
	}
	return cl.do(req, "health", nil)
}

func (cl *Client) do(req *http.Request, op string, v any) (err error) {
	start := time.Now()
	outcome := "ok"
	defer func() {
		cl.m.ObservePipeline(op, outcome, time.Since(start))
		if err != nil {
			cl.log.Warn("pipeline request failed",
				slog.String("op", op),
				slog.String("url", req.URL.String()),
				slog.String("outcome", outcome),
				slog.String("err", err.Error()))
		}
	}()

	resp, err := cl.c.Do(req)
	if err != nil {
		outcome = "network_error"
		return &NetworkError{Op: req.Method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = "http_error"
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &RequestError{Status: resp.StatusCode, StatusText: statusText(resp), Body: string(b)}
	}
	if v == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		outcome = "decode_error"
		return fmt.Errorf("pipeline %s: decode response: %w", op, err)
	}
	return nil
}

// statusText prefers the reason phrase the server sent.
func statusText(resp *http.Response) string {
	if _, reason, ok := strings.Cut(resp.Status, " "); ok && reason != "" {
		return reason
	}
	return http.StatusText(resp.StatusCode)
}

func encodeUpload(up Upload, opts *Options) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	name := up.Name
	if name == "" {
		name = "upload"
	}
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(fw, up.Body); err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if opts != nil {
		if opts.Model != "" {
			if err := mw.WriteField("model", opts.Model); err != nil {
				return nil, "", err
			}
		}
		if opts.AggMode != "" {
			if err := mw.WriteField("agg_mode", opts.AggMode); err != nil {
				return nil, "", err
			}
		}
		if opts.DropAllZero != nil {
			if err := mw.WriteField("drop_all_zero", strconv.FormatBool(*opts.DropAllZero)); err != nil {
				return nil, "", err
			}
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
