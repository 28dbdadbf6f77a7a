package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"ppm/internal/domain"
)

type folderListWire struct {
	BaseRoute string            `json:"baseRoute"`
	Folders   []json.RawMessage `json:"folders"`
}

// ListFolders lists the work items under state/city and annotates each with a
// cache-presence flag. Cache lookups run concurrently; a slow or failed lookup
// only leaves its own folder unflagged.
func (c *Client) ListFolders(ctx context.Context, state, city string) (*domain.FolderListing, error) {
	target := c.endpoint(pathListPrefix+url.PathEscape(state)+"/"+url.PathEscape(city), nil)
	body, err := c.doJSON(ctx, "list folders", http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	var wire folderListWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("decoding folder listing: %w", err)
	}

	listing := &domain.FolderListing{
		State:     state,
		City:      city,
		BaseRoute: domain.Route(wire.BaseRoute),
		Folders:   make([]domain.Folder, 0, len(wire.Folders)),
	}
	for _, raw := range wire.Folders {
		if f, ok := decodeFolder(raw, wire.BaseRoute); ok {
			listing.Folders = append(listing.Folders, f)
		}
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.folderConcurrency)
	for i := range listing.Folders {
		g.Go(func() error {
			entry := c.GetCacheByRoute(gCtx, listing.Folders[i].Route)
			listing.Folders[i].Cached = entry.Exists
			return nil
		})
	}
	_ = g.Wait()

	return listing, nil
}

// decodeFolder accepts a folder name or a {name, route} object. A folder
// without an explicit route lives under baseRoute.
func decodeFolder(raw json.RawMessage, baseRoute string) (domain.Folder, bool) {
	var name, route string
	if err := json.Unmarshal(raw, &name); err != nil {
		var obj struct {
			Name  string `json:"name"`
			Route string `json:"route"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return domain.Folder{}, false
		}
		name, route = obj.Name, obj.Route
	}
	if name == "" {
		return domain.Folder{}, false
	}
	if route == "" {
		route = joinRoute(baseRoute, name)
	}
	return domain.Folder{Name: name, Route: domain.Route(route)}, true
}

func joinRoute(base, name string) string {
	base = strings.Trim(base, "/")
	if base == "" {
		return name
	}
	return base + "/" + name
}
