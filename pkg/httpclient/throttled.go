package httpclient

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// ThrottledClient spaces out requests made through an underlying QueryClient.
type ThrottledClient struct {
	next    QueryClient
	limiter *rate.Limiter
}

// NewThrottledClient allows one request per interval. A non-positive interval disables throttling.
func NewThrottledClient(next QueryClient, interval time.Duration) *ThrottledClient {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &ThrottledClient{next: next, limiter: rate.NewLimiter(limit, 1)}
}

func (t *ThrottledClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	return t.GetWithQuery(ctx, url, nil, headers)
}

func (t *ThrottledClient) GetWithQuery(ctx context.Context, url string, query map[string]string, headers map[string]string) (Response, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("throttle wait: %w", err)
	}
	return t.next.GetWithQuery(ctx, url, query, headers)
}
