package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/vk/perfgrid/internal/ctxlog"
	"github.com/vk/perfgrid/internal/table"
)

// DefaultHTTPTimeout applies when an http dataset sets no timeout.
const DefaultHTTPTimeout = 30 * time.Second

// HTTPDataset loads a value with GET and saves it with PUT. Saving to a
// pre-signed object storage URL uploads the dataset to a bucket.
type HTTPDataset struct {
	url    string
	format string
	client *http.Client
}

// NewHTTPDataset returns a dataset backed by rawURL. An empty format is taken
// from the URL path extension and defaults to csv.
func NewHTTPDataset(rawURL, format string, timeout time.Duration) (*HTTPDataset, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("http dataset needs an absolute url, got %q", rawURL)
	}
	if format == "" {
		format = TypeCSV
		if ext := path.Ext(u.Path); ext == ".json" {
			format = TypeJSON
		}
	}
	if format != TypeCSV && format != TypeJSON {
		return nil, fmt.Errorf("http dataset format must be csv or json, got %q", format)
	}
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &HTTPDataset{
		url:    rawURL,
		format: format,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

func (d *HTTPDataset) Load(ctx context.Context) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute download request for %s: %w", d.Describe(), redactURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status: %s", resp.Status)
	}
	if d.format == TypeJSON {
		var v any
		if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return table.ReadCSV(resp.Body)
}

func (d *HTTPDataset) Save(ctx context.Context, value any) error {
	logger := ctxlog.FromContext(ctx).With("action", "upload")

	body, err := d.encode(value)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	contentType := mime.TypeByExtension("." + d.format)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(body))

	logger.Debug("Uploading dataset", "target", d.Describe(), "size", len(body), "contentType", contentType)
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute upload request for %s: %w", d.Describe(), redactURL(err))
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upload failed with status: %s", resp.Status)
	}
	return nil
}

func (d *HTTPDataset) encode(value any) ([]byte, error) {
	if d.format == TypeJSON {
		return encodeJSON(value)
	}
	tbl, ok := value.(*table.Table)
	if !ok {
		return nil, fmt.Errorf("csv dataset expects *table.Table, got %T", value)
	}
	var buf bytes.Buffer
	if err := tbl.WriteCSV(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// redactURL drops the request URL that *url.Error carries, since its query
// may hold a signature.
func redactURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

// Describe omits the query string, which may carry a signature.
func (d *HTTPDataset) Describe() string {
	u, err := url.Parse(d.url)
	if err != nil {
		return "http"
	}
	u.RawQuery = ""
	return "http:" + u.String()
}
