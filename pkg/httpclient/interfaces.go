package httpclient

import "context"

// Response is a fully read HTTP response.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client fetches pages. Non-2xx statuses are responses, not errors.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}

// QueryClient also encodes query parameters, as the news feed pager needs.
type QueryClient interface {
	Client
	GetWithQuery(ctx context.Context, url string, query map[string]string, headers map[string]string) (Response, error)
}
