package rakumart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/run651/rakumart-1688/internal/domain"
)

const (
	userAgent       = "rakumart-1688/1.0"
	maxResponseSize = 16 << 20
)

// Transport posts form or multipart bodies and returns the raw JSON reply.
// It never retries and never interprets the envelope.
type Transport struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
}

// NewTransport creates a transport with a per-call timeout and a client-side
// rate limit. A non-positive rate disables limiting.
func NewTransport(httpClient *http.Client, timeout time.Duration, perSecond float64, burst int) *Transport {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst < 1 {
		burst = 1
	}
	return &Transport{
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
		timeout:    timeout,
	}
}

// PostForm sends fields as application/x-www-form-urlencoded.
func (t *Transport) PostForm(ctx context.Context, endpoint string, fields Fields) (json.RawMessage, error) {
	body := strings.NewReader(fields.Encode())
	return t.post(ctx, endpoint, body, "application/x-www-form-urlencoded")
}

// PostMultipart sends fields as multipart/form-data, with attachments as
// file parts.
func (t *Transport) PostMultipart(ctx context.Context, endpoint string, fields Fields) (json.RawMessage, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if f.File != nil {
			part, err := w.CreateFormFile(f.Name, f.File.Filename)
			if err != nil {
				return nil, fmt.Errorf("%w: build multipart body: %v", domain.ErrInvalidRequest, err)
			}
			if _, err := part.Write(f.File.Content); err != nil {
				return nil, fmt.Errorf("%w: build multipart body: %v", domain.ErrInvalidRequest, err)
			}
			continue
		}
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, fmt.Errorf("%w: build multipart body: %v", domain.ErrInvalidRequest, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: build multipart body: %v", domain.ErrInvalidRequest, err)
	}
	return t.post(ctx, endpoint, &buf, w.FormDataContentType())
}

func (t *Transport) post(ctx context.Context, endpoint string, body io.Reader, contentType string) (json.RawMessage, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: waiting for rate limiter: %v", domain.ErrTransportTimeout, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransportNetwork, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, classify(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", domain.ErrTransportNetwork, resp.StatusCode)
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %d bytes starting %q", domain.ErrResponseDecode, len(data), preview(data))
	}

	return json.RawMessage(data), nil
}

func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", domain.ErrTransportTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrTransportNetwork, err)
}

func preview(data []byte) string {
	const n = 64
	if len(data) > n {
		return string(data[:n])
	}
	return string(data)
}
