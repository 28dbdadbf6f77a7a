package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"ppm/internal/domain"
)

// analyzeAttempt is one endpoint shape of the analyze-by-route chain.
type analyzeAttempt struct {
	name  string
	build func(ctx context.Context, route domain.Route) (*http.Request, error)
}

// AnalyzeByRoute tries the by-path endpoint, then the path-style endpoint,
// then the action-style start endpoint. The first success wins; when all
// three fail the result is a *domain.AnalysisUnavailableError.
func (c *Client) AnalyzeByRoute(ctx context.Context, route domain.Route) (*domain.AnalysisResult, error) {
	if route == "" {
		return nil, domain.ErrNoRoute
	}

	attempts := []analyzeAttempt{
		{name: "by-path", build: c.byPathRequest},
		{name: "by-route", build: c.byRouteRequest},
		{name: "start", build: c.startRequest},
	}

	var failures []error
	for _, a := range attempts {
		result, err := c.tryAnalyze(ctx, route, a)
		if err == nil {
			return result, nil
		}
		logrus.Warnf("apiclient.AnalyzeByRoute: %s failed for %s: %v", a.name, route, err)
		failures = append(failures, fmt.Errorf("%s: %w", a.name, err))
	}

	return nil, &domain.AnalysisUnavailableError{Route: route, Attempts: failures}
}

func (c *Client) tryAnalyze(ctx context.Context, route domain.Route, a analyzeAttempt) (*domain.AnalysisResult, error) {
	req, err := a.build(ctx, route)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do("analyze", req)
	if err != nil {
		return nil, err
	}
	return decodeAnalysis(body)
}

func (c *Client) byPathRequest(ctx context.Context, route domain.Route) (*http.Request, error) {
	query := url.Values{"route": []string{route.String()}}
	return http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(pathAnalyzeByPath, query), nil)
}

func (c *Client) byRouteRequest(ctx context.Context, route domain.Route) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(pathAnalyzePrefix+escapeRoute(route), nil), nil)
}

func (c *Client) startRequest(ctx context.Context, route domain.Route) (*http.Request, error) {
	payload, err := json.Marshal(map[string]string{"route": route.String()})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(pathAnalyzeStart, nil), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// escapeRoute escapes each segment of route and keeps the separators.
func escapeRoute(route domain.Route) string {
	segments := strings.Split(strings.Trim(route.String(), "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
