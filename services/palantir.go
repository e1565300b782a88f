package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/vdubya/aca-viewer/pkg/metrics"
	"github.com/vdubya/aca-viewer/pkg/viewer"
)

const (
	defaultPalantirBase = "https://foundry.api.dod.mil"

	tocEndpoint = "/pipelines/toc_extract"
	nerEndpoint = "/pipelines/ner_extract"

	pipelineCacheSize = 64
)

// PalantirClient talks to the Foundry pipeline API. Successful responses
// are cached in a small LRU keyed by endpoint and file name.
type PalantirClient struct {
	base   string
	token  string
	http   *http.Client
	cache  *lru.Cache[string, []byte]
	logger *logrus.Logger
}

// DefaultPalantirClient returns the shared pipeline client configured from
// PALANTIR_BASE and PALANTIR_TOKEN.
var DefaultPalantirClient = sync.OnceValue(func() *PalantirClient {
	base := os.Getenv("PALANTIR_BASE")
	if base == "" {
		base = defaultPalantirBase
	}

	return NewPalantirClient(base, os.Getenv("PALANTIR_TOKEN"), DefaultHttpClient())
})

func NewPalantirClient(base, token string, httpClient *http.Client) *PalantirClient {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cache, _ := lru.New[string, []byte](pipelineCacheSize)

	return &PalantirClient{
		base:   base,
		token:  token,
		http:   httpClient,
		cache:  cache,
		logger: logger,
	}
}

// SimulateEnabled reports whether SIMULATE_PALANTIR bypasses the real API.
func SimulateEnabled() bool {
	v := os.Getenv("SIMULATE_PALANTIR")
	return v == "1" || v == "true"
}

// Toc fetches the table-of-contents pipeline output for a file.
func (c *PalantirClient) Toc(ctx context.Context, fileName string) ([]viewer.TocEntry, error) {
	body, err := c.get(ctx, tocEndpoint, fileName)
	if err != nil {
		return nil, err
	}

	var entries []viewer.TocEntry
	gjson.GetBytes(body, "entries").ForEach(func(_, entry gjson.Result) bool {
		entries = append(entries, viewer.TocEntry{
			Title: entry.Get("title").String(),
			Page:  int(entry.Get("page").Int()),
			Level: int(entry.Get("level").Int()),
		})
		return true
	})
	return entries, nil
}

// Entities fetches the named-entity pipeline output for a file.
func (c *PalantirClient) Entities(ctx context.Context, fileName string) ([]viewer.Entity, error) {
	body, err := c.get(ctx, nerEndpoint, fileName)
	if err != nil {
		return nil, err
	}

	var entities []viewer.Entity
	gjson.GetBytes(body, "entities").ForEach(func(_, ent gjson.Result) bool {
		entities = append(entities, viewer.Entity{
			Label:      ent.Get("label").String(),
			Type:       ent.Get("type").String(),
			Page:       int(ent.Get("page").Int()),
			Start:      int(ent.Get("start").Int()),
			End:        int(ent.Get("end").Int()),
			Confidence: ent.Get("confidence").Float(),
		})
		return true
	})
	return entities, nil
}

func (c *PalantirClient) get(ctx context.Context, endpoint, fileName string) ([]byte, error) {
	cacheKey := endpoint + "?" + fileName
	if cached, ok := c.cache.Get(cacheKey); ok {
		metrics.CacheHits.WithLabelValues("palantir").Inc()
		return cached, nil
	}
	metrics.CacheMisses.WithLabelValues("palantir").Inc()

	timer := prometheus.NewTimer(metrics.PipelineRequestDuration.WithLabelValues(endpoint))
	defer timer.ObserveDuration()

	reqURL := c.base + endpoint + "?" + url.Values{"fileName": {fileName}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building pipeline request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.PipelineErrors.WithLabelValues(endpoint).Inc()
		return nil, errors.Wrapf(err, "calling pipeline %s", endpoint)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.PipelineErrors.WithLabelValues(endpoint).Inc()
		return nil, errors.Wrap(err, "reading pipeline response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.PipelineErrors.WithLabelValues(endpoint).Inc()
		c.logger.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"status":   resp.StatusCode,
		}).Error("Pipeline request failed")
		return nil, errors.Errorf("pipeline %s returned status %d", endpoint, resp.StatusCode)
	}

	if !gjson.ValidBytes(body) {
		metrics.PipelineErrors.WithLabelValues(endpoint).Inc()
		return nil, fmt.Errorf("pipeline %s returned invalid JSON", endpoint)
	}

	c.cache.Add(cacheKey, body)
	return body, nil
}
