package services

import (
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// DefaultHttpClient returns the shared outbound HTTP client with retrying
// transport.
var DefaultHttpClient = sync.OnceValue(func() *http.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil
	client.HTTPClient.Timeout = 30 * time.Second

	return client.StandardClient()
})
