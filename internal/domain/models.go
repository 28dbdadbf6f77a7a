package domain

import (
	"net/url"
	"strings"
	"time"
)

// FileDescriptor identifies a selected file by name and size only.
type FileDescriptor struct {
	Name string `json:"name" msgpack:"name"`
	Size int64  `json:"size" msgpack:"size"`
}

// Fingerprint is the deterministic identifier of a set of selected files.
// It is a routing and cache key, not a content-integrity guarantee.
type Fingerprint struct {
	Value  string `json:"fingerprint"`
	Bucket string `json:"bucket"`
}

// BucketLength is the number of leading hex characters of a fingerprint
// used as its storage bucket.
const BucketLength = 8

// Route is a server-relative path where uploaded files live and where
// their cached analysis is indexed.
type Route string

// String returns the route as a plain string.
func (r Route) String() string { return string(r) }

// CheckPublicLocation accepts only a relative path on the analysis service.
// Absolute and scheme-relative URLs are rejected.
func CheckPublicLocation(location string) error {
	location = strings.TrimSpace(location)
	if location == "" || strings.HasPrefix(location, "//") || strings.ContainsAny(location, "\\\r\n\t") {
		return ErrInvalidPublicLocation
	}
	u, err := url.Parse(location)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return ErrInvalidPublicLocation
	}
	return nil
}

// Folder is a candidate work item listed under a state/city location.
type Folder struct {
	Name   string `json:"name"`
	Route  Route  `json:"route"`
	Cached bool   `json:"cached"`
}

// FolderListing is the result of listing folders under a location.
type FolderListing struct {
	State     string   `json:"state"`
	City      string   `json:"city"`
	BaseRoute Route    `json:"base_route"`
	Folders   []Folder `json:"folders"`
}

// Preview describes the stored preview of the first selected file.
type Preview struct {
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Pages       int       `json:"pages,omitempty"`
	DataURL     string    `json:"data_url,omitempty"`
	StorageKey  string    `json:"storage_key,omitempty"`
	StoredAt    time.Time `json:"stored_at"`
}

// IsPDF reports whether the previewed file can be shown inline as a PDF.
func (p *Preview) IsPDF() bool {
	return p != nil && p.ContentType == "application/pdf"
}
