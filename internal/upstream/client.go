// Package upstream talks to the rate-limited SOAP data provider. Every
// outbound call passes admission control first; per-query lookups are
// served from the durable response cache whenever possible.
package upstream

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/galaxytools/craft-tracker/internal/config"
	"github.com/galaxytools/craft-tracker/internal/ratelimit"
	"github.com/galaxytools/craft-tracker/internal/soapcache"
	"github.com/sirupsen/logrus"
)

// ErrRateLimited means the admission check denied the call and no cached
// payload was available to fall back on. Not a failure of the upstream;
// callers branch on it (retry later, surface 429).
var ErrRateLimited = errors.New("upstream: rate limit exceeded")

// All outbound SOAP calls share one admission key; the provider's quota is
// per API consumer, not per end client.
const limiterKey = "soap"

type Client struct {
	httpClient *http.Client
	endpoint   string
	cacheTTL   time.Duration
	limiter    *ratelimit.Limiter
	cache      *soapcache.Cache
	log        *logrus.Entry
}

type loggingTransport struct {
	log *logrus.Entry
}

func NewClient(logger *logrus.Logger, cfg *config.Config, limiter *ratelimit.Limiter, cache *soapcache.Cache) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: &loggingTransport{log: logger.WithField("component", "soap_transport")},
		},
		endpoint: cfg.SoapEndpoint,
		cacheTTL: cfg.SoapCacheTTL,
		limiter:  limiter,
		cache:    cache,
		log:      logger.WithField("component", "soap_client"),
	}
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	log := t.log.WithFields(logrus.Fields{
		"method": req.Method,
		"url":    req.URL.String(),
		"action": req.Header.Get("SOAPAction"),
	})

	resp, err := http.DefaultTransport.RoundTrip(req)
	if err != nil {
		log.WithError(err).Error("SOAP request failed")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"status_code": resp.StatusCode,
		"duration":    time.Since(start),
	}).Debug("SOAP request completed")
	return resp, nil
}

// LookupResource returns the provider's payload for a named resource.
// cached reports whether the payload came out of the cache rather than a
// live fetch.
func (c *Client) LookupResource(ctx context.Context, name string) (payload string, cached bool, err error) {
	signature := "resource/" + name
	return c.lookup(ctx, signature, "GetResourceInfo", lookupEnvelope("GetResourceInfo", "name", name))
}

// LookupSchematic returns the provider's payload for a schematic by its
// provider-side id.
func (c *Client) LookupSchematic(ctx context.Context, externalID string) (string, bool, error) {
	signature := "schematic/" + externalID
	return c.lookup(ctx, signature, "GetSchematicInfo", lookupEnvelope("GetSchematicInfo", "id", externalID))
}

func (c *Client) lookup(ctx context.Context, signature, action, envelope string) (string, bool, error) {
	payload, fresh, err := c.cache.Get(ctx, signature)
	if err != nil && !errors.Is(err, soapcache.ErrMiss) {
		return "", false, err
	}
	haveCached := err == nil
	if haveCached && fresh {
		return payload, true, nil
	}

	if res := c.limiter.Check(limiterKey); !res.Allowed {
		if haveCached {
			c.log.WithFields(logrus.Fields{
				"signature": signature,
				"reset_at":  res.ResetTime,
			}).Warn("Rate limited, serving stale cache entry")
			return payload, true, nil
		}
		return "", false, ErrRateLimited
	}

	body, err := c.call(ctx, action, envelope)
	if err != nil {
		// Cache left untouched; a stale entry is better than none.
		return "", false, err
	}

	if err := c.cache.Put(ctx, signature, body, c.cacheTTL); err != nil {
		c.log.WithFields(logrus.Fields{
			"signature": signature,
			"error":     err,
		}).Error("Failed to cache SOAP response")
	}
	return body, false, nil
}

func (c *Client) call(ctx context.Context, action, envelope string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(envelope))
	if err != nil {
		return "", fmt.Errorf("soap request build failed: %w", err)
	}
	req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	req.Header.Set("SOAPAction", action)
	req.Header.Set("User-Agent", "CraftTracker/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("soap call %s failed: %w", action, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading soap response for %s: %w", action, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("soap call %s failed with status %d", action, resp.StatusCode)
	}
	return string(body), nil
}

func lookupEnvelope(action, param, value string) string {
	var escaped bytes.Buffer
	xml.EscapeText(&escaped, []byte(value))
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <%[1]s>
      <%[2]s>%[3]s</%[2]s>
    </%[1]s>
  </soap:Body>
</soap:Envelope>`, action, param, escaped.String())
}
