package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"

	"ppm/internal/config"
	"ppm/internal/domain"
	"ppm/internal/port"
	"ppm/internal/session"
)

// PreviewService validates selected files and keeps a preview of the first
// one for the viewer page.
type PreviewService interface {
	Validate(files []port.UploadFile) error
	Store(ctx context.Context, sessionID string, file port.UploadFile) (*domain.Preview, error)
	URL(ctx context.Context, p *domain.Preview) (string, error)
	Discard(ctx context.Context, sessionID string) error
}

type previewService struct {
	storage port.PreviewStorage
	store   port.SessionStore
	cfg     *config.PreviewConfig
}

// NewPreviewService creates a new PreviewService. A nil storage keeps
// previews inline in the session, within the configured inline limit.
func NewPreviewService(storage port.PreviewStorage, store port.SessionStore, cfg *config.PreviewConfig) PreviewService {
	return &previewService{storage: storage, store: store, cfg: cfg}
}

// ContentTypeOf returns the MIME type of f, falling back to its extension.
func ContentTypeOf(f port.UploadFile) string {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(f.ContentType, ";")[0]))
	if domain.AllowedContentTypes[ct] {
		return ct
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(f.Name), "."))
	return domain.ContentTypeByExtension[ext]
}

func (s *previewService) Validate(files []port.UploadFile) error {
	if len(files) == 0 {
		return domain.ErrNoFiles
	}
	for _, f := range files {
		if ContentTypeOf(f) == "" {
			return fmt.Errorf("%s: %w", f.Name, domain.ErrUnsupportedFileType)
		}
		if limit := s.cfg.MaxFileBytes(); limit > 0 && f.Size > limit {
			return fmt.Errorf("%s: %w", f.Name, domain.ErrFileTooLarge)
		}
	}
	return nil
}

func (s *previewService) Store(ctx context.Context, sessionID string, file port.UploadFile) (*domain.Preview, error) {
	if file.Content == nil {
		return nil, fmt.Errorf("previewService.Store: %s has no content", file.Name)
	}
	if _, err := file.Content.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("previewService.Store: rewinding %s: %w", file.Name, err)
	}
	data, err := io.ReadAll(file.Content)
	if err != nil {
		return nil, fmt.Errorf("previewService.Store: reading %s: %w", file.Name, err)
	}
	if _, err := file.Content.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("previewService.Store: rewinding %s: %w", file.Name, err)
	}

	preview := &domain.Preview{
		FileName:    file.Name,
		ContentType: ContentTypeOf(file),
		Size:        int64(len(data)),
		StoredAt:    time.Now().UTC(),
	}
	if preview.IsPDF() {
		preview.Pages = countPages(data)
	}

	state := session.NewState(s.store, sessionID)
	s.discardStored(ctx, state)

	switch {
	case s.storage != nil:
		key := fmt.Sprintf("previews/%s/%s/%s", sessionID, uuid.New(), filepath.Base(file.Name))
		err := s.storage.Put(ctx, port.PreviewObject{
			Key:         key,
			Body:        bytes.NewReader(data),
			ContentType: preview.ContentType,
			Size:        preview.Size,
		})
		if err != nil {
			return nil, fmt.Errorf("previewService.Store: %w", err)
		}
		preview.StorageKey = key
	case preview.Size <= s.cfg.MaxInlineBytes():
		preview.DataURL = "data:" + preview.ContentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	default:
		logrus.Infof("previewService.Store: %s (%d bytes) exceeds inline limit, keeping metadata only", file.Name, preview.Size)
	}

	if err := state.SetPreview(ctx, preview); err != nil {
		return nil, err
	}
	return preview, nil
}

func (s *previewService) URL(ctx context.Context, p *domain.Preview) (string, error) {
	if p == nil {
		return "", nil
	}
	if p.StorageKey == "" {
		return p.DataURL, nil
	}
	if s.storage == nil {
		return "", domain.ErrPreviewStorageDisabled
	}
	return s.storage.PresignedURL(ctx, p.StorageKey)
}

func (s *previewService) Discard(ctx context.Context, sessionID string) error {
	state := session.NewState(s.store, sessionID)
	s.discardStored(ctx, state)
	return state.SetPreview(ctx, nil)
}

// discardStored removes the previous preview object, if any. Failures only
// leave an orphaned object behind.
func (s *previewService) discardStored(ctx context.Context, state *session.State) {
	if s.storage == nil {
		return
	}
	prev, err := state.Preview(ctx)
	if err != nil || prev == nil || prev.StorageKey == "" {
		return
	}
	if err := s.storage.Delete(ctx, prev.StorageKey); err != nil {
		logrus.Warnf("previewService: deleting old preview %s: %v", prev.StorageKey, err)
	}
}

// countPages returns the page count of a PDF, or 0 when it cannot be read.
func countPages(data []byte) (pages int) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Debugf("previewService: page count unavailable: %v", r)
			pages = 0
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		logrus.Debugf("previewService: page count unavailable: %v", err)
		return 0
	}
	return r.NumPage()
}
