package httpclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultUserAgent is sent unless the request headers set their own.
const DefaultUserAgent = "samvad-declaration-auditor/1.0"

// RestyClient is the QueryClient used against real sites.
type RestyClient struct {
	rc *resty.Client
}

func NewRestyClient(timeout time.Duration) *RestyClient {
	return &RestyClient{rc: NewRestyHTTPClient(timeout)}
}

// NewRestyHTTPClient returns a bare resty client for callers issuing other verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", DefaultUserAgent)
}

func (c *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	return c.GetWithQuery(ctx, url, nil, headers)
}

// GetWithQuery buffers the whole body; any status code is returned as a response.
func (c *RestyClient) GetWithQuery(ctx context.Context, url string, query map[string]string, headers map[string]string) (Response, error) {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetQueryParams(query).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	return bufferedResponse{status: resp.StatusCode(), body: resp.Body()}, nil
}

type bufferedResponse struct {
	status int
	body   []byte
}

func (r bufferedResponse) Body() []byte    { return r.body }
func (r bufferedResponse) StatusCode() int { return r.status }
