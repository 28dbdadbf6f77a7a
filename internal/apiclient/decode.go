package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"ppm/internal/domain"
	"ppm/internal/port"
)

type preflightItemWire struct {
	Name     string          `json:"name"`
	Size     int64           `json:"size"`
	Exists   bool            `json:"exists"`
	Route    string          `json:"route"`
	Cache    cacheField      `json:"cache"`
	Analysis json.RawMessage `json:"analysis"`
}

type preflightWire struct {
	Items         []preflightItemWire `json:"items"`
	Route         string              `json:"route"`
	CombinedCache cacheField          `json:"combined_cache"`
}

func (w *preflightWire) toPort() *port.PreflightResponse {
	out := &port.PreflightResponse{
		Items:            make([]port.PreflightItem, 0, len(w.Items)),
		Route:            domain.Route(w.Route),
		CombinedCache:    w.CombinedCache.Present,
		CombinedAnalysis: w.CombinedCache.Analysis,
	}
	for _, it := range w.Items {
		analysis := it.Cache.Analysis
		if analysis == nil {
			// An undecodable per-item analysis only costs a cache hit.
			analysis, _ = optionalAnalysis(it.Analysis)
		}
		out.Items = append(out.Items, port.PreflightItem{
			Name:     it.Name,
			Size:     it.Size,
			Exists:   it.Exists,
			Route:    domain.Route(it.Route),
			Cached:   it.Cache.Present || analysis != nil,
			Analysis: analysis,
		})
	}
	return out
}

type uploadWire struct {
	Route     string            `json:"route"`
	Saved     []json.RawMessage `json:"saved"`
	Analysis  json.RawMessage   `json:"analysis"`
	Resultado json.RawMessage   `json:"resultado"`
}

func (w *uploadWire) toPort() (*port.UploadResponse, error) {
	out := &port.UploadResponse{Route: domain.Route(w.Route)}
	for _, raw := range w.Saved {
		if name := savedName(raw); name != "" {
			out.Saved = append(out.Saved, name)
		}
	}

	raw := w.Analysis
	if !present(raw) {
		raw = w.Resultado
	}
	analysis, err := optionalAnalysis(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding upload analysis: %w", err)
	}
	out.Analysis = analysis
	return out, nil
}

// savedName accepts either a plain string or an object with a name-like field.
func savedName(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Name     string `json:"name"`
		Filename string `json:"filename"`
		Path     string `json:"path"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	switch {
	case obj.Name != "":
		return obj.Name
	case obj.Filename != "":
		return obj.Filename
	default:
		return obj.Path
	}
}

// cacheField decodes the loosely typed cache markers the service returns:
// null, a boolean, a {exists, analysis} object, or an analysis document.
type cacheField struct {
	Present  bool
	Analysis *domain.AnalysisResult
}

func (c *cacheField) UnmarshalJSON(data []byte) error {
	*c = cacheField{}
	trimmed := bytes.TrimSpace(data)
	if !present(trimmed) {
		return nil
	}

	switch trimmed[0] {
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return err
		}
		if rawExists, ok := fields["exists"]; ok {
			var exists bool
			_ = json.Unmarshal(rawExists, &exists)
			c.Present = exists
			raw := fields["analysis"]
			if !present(raw) {
				raw = fields["resultado"]
			}
			analysis, err := optionalAnalysis(raw)
			if err != nil {
				return err
			}
			c.Analysis = analysis
			return nil
		}
		analysis, err := decodeAnalysis(trimmed)
		if err != nil {
			return err
		}
		c.Present = true
		c.Analysis = analysis
	case 't', 'f':
		return json.Unmarshal(trimmed, &c.Present)
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		c.Present = s != ""
	default:
		var n float64
		if err := json.Unmarshal(trimmed, &n); err == nil {
			c.Present = n != 0
		}
	}
	return nil
}

// decodeAnalysis accepts {resultado: ...}, {analysis: ...} or a bare analysis document.
func decodeAnalysis(body []byte) (*domain.AnalysisResult, error) {
	var env struct {
		Resultado json.RawMessage `json:"resultado"`
		Analysis  json.RawMessage `json:"analysis"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decoding analysis: %w", err)
	}

	payload := json.RawMessage(body)
	switch {
	case present(env.Resultado):
		payload = env.Resultado
	case present(env.Analysis):
		payload = env.Analysis
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decoding analysis: %w", err)
	}
	return &result, nil
}

func optionalAnalysis(raw json.RawMessage) (*domain.AnalysisResult, error) {
	if !present(raw) {
		return nil, nil
	}
	return decodeAnalysis(raw)
}

func present(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// extractDetail pulls the server's error message from a failure body.
func extractDetail(body []byte) string {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	for _, key := range []string{"detail", "error", "message"} {
		raw, ok := env[key]
		if !ok || !present(raw) {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return strings.TrimSpace(s)
		}
		return string(bytes.TrimSpace(raw))
	}
	return ""
}
