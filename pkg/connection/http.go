package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/boardkit/livecache/pkg/models"
)

// RESTClient implements RemoteService over the data service's record REST
// surface: /key/:collection for collections and /key/:collection/:id for
// single records. Transient transport failures are retried with exponential
// backoff; rejected requests (4xx) are not.
type RESTClient struct {
	baseURL    string
	token      string
	namespace  string
	timeout    time.Duration
	maxElapsed time.Duration
	httpClient *http.Client
}

var _ RemoteService = (*RESTClient)(nil)

func NewRESTClient(cfg Config) *RESTClient {
	return &RESTClient{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		token:      cfg.Token,
		namespace:  cfg.Namespace,
		timeout:    cfg.Timeout,
		maxElapsed: cfg.RetryMaxElapsed,
		httpClient: &http.Client{},
	}
}

func (c *RESTClient) Select(ctx context.Context, kind models.Kind, filter map[string]string) ([]models.Record, error) {
	query := url.Values{}
	for k, v := range filter {
		query.Set(k, v)
	}
	data, err := c.request(ctx, http.MethodGet, "/key/"+string(kind), query, nil)
	if err != nil {
		return nil, err
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decoding %s list: %w", kind, err)
	}
	recs := make([]models.Record, 0, len(rows))
	for _, raw := range rows {
		rec, err := models.Blank(kind)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, rec); err != nil {
			return nil, fmt.Errorf("decoding %s row: %w", kind, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (c *RESTClient) SelectOne(ctx context.Context, kind models.Kind, id models.ID) (models.Record, error) {
	data, err := c.request(ctx, http.MethodGet, c.recordPath(kind, id), nil, nil)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c.decodeOne(kind, data)
}

func (c *RESTClient) Insert(ctx context.Context, kind models.Kind, rec models.Record) (models.Record, error) {
	data, err := c.request(ctx, http.MethodPost, "/key/"+string(kind), nil, rec)
	if err != nil {
		return nil, err
	}
	return c.decodeOne(kind, data)
}

func (c *RESTClient) Update(ctx context.Context, kind models.Kind, id models.ID, fields map[string]any) (models.Record, error) {
	data, err := c.request(ctx, http.MethodPatch, c.recordPath(kind, id), nil, fields)
	if err != nil {
		return nil, err
	}
	return c.decodeOne(kind, data)
}

func (c *RESTClient) Delete(ctx context.Context, kind models.Kind, id models.ID) error {
	_, err := c.request(ctx, http.MethodDelete, c.recordPath(kind, id), nil, nil)
	return err
}

func (c *RESTClient) recordPath(kind models.Kind, id models.ID) string {
	return "/key/" + string(kind) + "/" + url.PathEscape(id.String())
}

func (c *RESTClient) decodeOne(kind models.Kind, data []byte) (models.Record, error) {
	rec, err := models.Blank(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("decoding %s record: %w", kind, err)
	}
	return rec, nil
}

// request performs one HTTP exchange with the retry policy applied. The
// payload is marshaled once; each retry reuses the same bytes.
func (c *RESTClient) request(ctx context.Context, method, endpoint string, query url.Values, payload any) ([]byte, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	operation := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if len(query) > 0 {
			req.URL.RawQuery = query.Encode()
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("NS", c.namespace)
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, backoff.Permanent(ErrNotFound)
		case resp.StatusCode >= http.StatusInternalServerError:
			return nil, fmt.Errorf("remote error: %s", resp.Status)
		case resp.StatusCode >= http.StatusBadRequest:
			return nil, backoff.Permanent(fmt.Errorf("remote rejected %s %s: %s", method, endpoint, strings.TrimSpace(string(data))))
		}
		return data, nil
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(c.maxElapsed),
	)
}
