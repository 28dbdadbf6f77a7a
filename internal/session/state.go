package session

import (
	"context"
	"encoding/json"
	"fmt"

	"ppm/internal/domain"
	"ppm/internal/port"
)

// State is a typed view over one session's entries in a SessionStore.
// Structured values are stored as JSON strings; an empty string means unset.
type State struct {
	store port.SessionStore
	id    string
}

// NewState binds store to sessionID.
func NewState(store port.SessionStore, sessionID string) *State {
	return &State{store: store, id: sessionID}
}

// ID returns the session identifier.
func (s *State) ID() string {
	return s.id
}

func (s *State) get(ctx context.Context, key string) (string, error) {
	v, _, err := s.store.Get(ctx, s.id, key)
	if err != nil {
		return "", fmt.Errorf("session.get %s: %w", key, err)
	}
	return v, nil
}

func (s *State) set(ctx context.Context, key, value string) error {
	if err := s.store.Set(ctx, s.id, key, value); err != nil {
		return fmt.Errorf("session.set %s: %w", key, err)
	}
	return nil
}

func (s *State) getJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	v, err := s.get(ctx, key)
	if err != nil || v == "" {
		return false, err
	}
	if err := json.Unmarshal([]byte(v), dst); err != nil {
		return false, fmt.Errorf("session.get %s: decoding: %w", key, err)
	}
	return true, nil
}

func (s *State) setJSON(ctx context.Context, key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("session.set %s: encoding: %w", key, err)
	}
	return s.set(ctx, key, string(b))
}

func (s *State) Route(ctx context.Context) (domain.Route, error) {
	v, err := s.get(ctx, domain.SessionKeyRoute)
	return domain.Route(v), err
}

func (s *State) SetRoute(ctx context.Context, route domain.Route) error {
	return s.set(ctx, domain.SessionKeyRoute, route.String())
}

func (s *State) Fingerprint(ctx context.Context) (string, error) {
	return s.get(ctx, domain.SessionKeyFingerprint)
}

func (s *State) SetFingerprint(ctx context.Context, fp domain.Fingerprint) error {
	return s.set(ctx, domain.SessionKeyFingerprint, fp.Value)
}

func (s *State) FileName(ctx context.Context) (string, error) {
	return s.get(ctx, domain.SessionKeyFileName)
}

func (s *State) SetFileName(ctx context.Context, name string) error {
	return s.set(ctx, domain.SessionKeyFileName, name)
}

// Preview returns the stored preview of the first selected file, or nil.
func (s *State) Preview(ctx context.Context) (*domain.Preview, error) {
	var p domain.Preview
	ok, err := s.getJSON(ctx, domain.SessionKeyFileData, &p)
	if !ok || err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *State) SetPreview(ctx context.Context, p *domain.Preview) error {
	if p == nil {
		return s.set(ctx, domain.SessionKeyFileData, "")
	}
	return s.setJSON(ctx, domain.SessionKeyFileData, p)
}

func (s *State) SavedFiles(ctx context.Context) ([]string, error) {
	var saved []string
	if _, err := s.getJSON(ctx, domain.SessionKeySavedFiles, &saved); err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *State) SetSavedFiles(ctx context.Context, saved []string) error {
	if saved == nil {
		saved = []string{}
	}
	return s.setJSON(ctx, domain.SessionKeySavedFiles, saved)
}

// Analysis returns the stored analysis, or nil when none is stored.
func (s *State) Analysis(ctx context.Context) (*domain.AnalysisResult, error) {
	var a domain.AnalysisResult
	ok, err := s.getJSON(ctx, domain.SessionKeyAnalysis, &a)
	if !ok || err != nil {
		return nil, err
	}
	return &a, nil
}

// SetAnalysis stores a; nil overwrites any earlier analysis with an empty value.
func (s *State) SetAnalysis(ctx context.Context, a *domain.AnalysisResult) error {
	if a == nil {
		return s.set(ctx, domain.SessionKeyAnalysis, "")
	}
	return s.setJSON(ctx, domain.SessionKeyAnalysis, a)
}

// PublicAnalysis returns the location of a selected public analysis, if any.
func (s *State) PublicAnalysis(ctx context.Context) (string, error) {
	return s.get(ctx, domain.SessionKeyPublicJSON)
}

func (s *State) SetPublicAnalysis(ctx context.Context, location string) error {
	return s.set(ctx, domain.SessionKeyPublicJSON, location)
}

// ClearSelection forgets the current file selection and everything derived
// from it. The selected public analysis is kept.
func (s *State) ClearSelection(ctx context.Context) error {
	for _, key := range []string{
		domain.SessionKeyFileData,
		domain.SessionKeyFileName,
		domain.SessionKeyRoute,
		domain.SessionKeyFingerprint,
		domain.SessionKeyAnalysis,
		domain.SessionKeySavedFiles,
	} {
		if err := s.set(ctx, key, ""); err != nil {
			return err
		}
	}
	return nil
}
