package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"ppm/internal/domain"
	"ppm/internal/middleware"
	"ppm/internal/port"
	"ppm/internal/service"
	"ppm/internal/session"
)

// Upload button labels.
const (
	LabelIdle = "Analyze document"
	LabelBusy = "Analyzing..."
	LabelDone = "Analysis complete"
)

// UploadControls is the state of the upload page's analyze button.
type UploadControls struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
	Error    string `json:"error,omitempty"`
}

// IdleControls returns the controls of a page ready for a new selection.
func IdleControls() UploadControls {
	return UploadControls{Label: LabelIdle}
}

// Begin disables the button while a negotiation runs.
func (u *UploadControls) Begin() {
	*u = UploadControls{Label: LabelBusy, Disabled: true}
}

// Finish marks the negotiation as complete.
func (u *UploadControls) Finish() {
	*u = UploadControls{Label: LabelDone}
}

// Fail restores the idle button and keeps the message for display.
func (u *UploadControls) Fail(msg string) {
	*u = UploadControls{Label: LabelIdle, Error: msg}
}

var uploadWired atomic.Bool

// WireUploadRoutes installs the upload and negotiation routes. It runs at most
// once per process and reports whether this call did the wiring.
func WireUploadRoutes(r gin.IRouter, h *UploadHandler) bool {
	if !uploadWired.CompareAndSwap(false, true) {
		logrus.Warn("handler.WireUploadRoutes: upload routes already wired")
		return false
	}

	r.GET("/", h.Page)
	r.POST("/upload", h.Upload)
	r.POST("/change-file", h.ChangeFile)

	api := r.Group("/api/v1")
	api.POST("/negotiate", h.Negotiate)
	api.GET("/controls", h.Controls)
	api.POST("/selection/clear", h.ClearSelection)
	return true
}

// UploadHandler serves the upload page and runs cache negotiations.
type UploadHandler struct {
	negotiation service.NegotiationService
	previews    service.PreviewService
	viewer      service.ViewerService
	store       port.SessionStore
	busy        sync.Map
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(
	negotiation service.NegotiationService,
	previews service.PreviewService,
	viewer service.ViewerService,
	store port.SessionStore,
) *UploadHandler {
	return &UploadHandler{negotiation: negotiation, previews: previews, viewer: viewer, store: store}
}

type uploadPage struct {
	Controls UploadControls
	FileName string
	Decision domain.Decision
}

func (h *UploadHandler) controlsFor(sessionID string) UploadControls {
	controls := IdleControls()
	if _, running := h.busy.Load(sessionID); running {
		controls.Begin()
	}
	return controls
}

// Page handles GET /
func (h *UploadHandler) Page(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	fileName, err := session.NewState(h.store, sessionID).FileName(c.Request.Context())
	if err != nil {
		logrus.Warnf("uploadHandler.Page: reading file name: %v", err)
	}
	c.HTML(http.StatusOK, "upload.tmpl", uploadPage{Controls: h.controlsFor(sessionID), FileName: fileName})
}

// Upload handles POST /upload from the upload form.
func (h *UploadHandler) Upload(c *gin.Context) {
	page := uploadPage{Controls: IdleControls()}

	result, fileName, err := h.run(c, &page.Controls)
	if err != nil {
		logrus.Warnf("uploadHandler.Upload: %v", err)
		if errors.Is(err, domain.ErrNegotiationInProgress) {
			page.Controls.Begin()
			page.Controls.Error = domain.UserMessage(err)
		} else {
			page.Controls.Fail(domain.UserMessage(err))
		}
		status, _, _ := MapDomainError(err)
		c.HTML(status, "upload.tmpl", page)
		return
	}

	page.FileName = fileName
	page.Decision = result.Decision
	c.HTML(http.StatusOK, "upload.tmpl", page)
}

// Negotiate handles POST /api/v1/negotiate
// @Summary Negotiate and analyze selected files
// @Description Fingerprints the selected files, reuses a cached analysis when the server has one, and uploads otherwise
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Selected files (PDF, JPG, or PNG)"
// @Success 200 {object} Response{data=service.NegotiationResult} "Negotiation outcome"
// @Failure 400 {object} ErrorResponseBody "No files or unsupported type"
// @Failure 409 {object} ErrorResponseBody "Analysis already running"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 502 {object} ErrorResponseBody "Analysis service rejected the request"
// @Router /negotiate [post]
func (h *UploadHandler) Negotiate(c *gin.Context) {
	var controls UploadControls
	result, _, err := h.run(c, &controls)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// Controls handles GET /api/v1/controls
// @Summary Upload button state
// @Tags upload
// @Produce json
// @Success 200 {object} Response{data=UploadControls}
// @Router /controls [get]
func (h *UploadHandler) Controls(c *gin.Context) {
	RespondOK(c, h.controlsFor(middleware.GetSessionID(c)))
}

// ChangeFile handles POST /change-file
func (h *UploadHandler) ChangeFile(c *gin.Context) {
	if err := h.viewer.ClearSelection(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		logrus.Errorf("uploadHandler.ChangeFile: %v", err)
		c.HTML(http.StatusInternalServerError, "upload.tmpl", uploadPage{Controls: UploadControls{
			Label: LabelIdle, Error: domain.UserMessage(err),
		}})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// ClearSelection handles POST /api/v1/selection/clear
// @Summary Clear the current selection
// @Tags upload
// @Produce json
// @Success 200 {object} Response{data=UploadControls}
// @Router /selection/clear [post]
func (h *UploadHandler) ClearSelection(c *gin.Context) {
	if err := h.viewer.ClearSelection(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, IdleControls())
}

// run validates the multipart selection, stores the preview of the first
// file and negotiates. controls follows the button through the run.
func (h *UploadHandler) run(c *gin.Context, controls *UploadControls) (*service.NegotiationResult, string, error) {
	sessionID := middleware.GetSessionID(c)
	ctx := c.Request.Context()

	files, closeAll, err := formFiles(c)
	if err != nil {
		return nil, "", err
	}
	defer closeAll()

	if err := h.previews.Validate(files); err != nil {
		return nil, "", err
	}

	// The session is claimed before the preview is replaced; only the
	// claiming request releases it.
	if _, running := h.busy.LoadOrStore(sessionID, struct{}{}); running {
		return nil, "", domain.ErrNegotiationInProgress
	}
	defer h.busy.Delete(sessionID)
	controls.Begin()

	if _, err := h.previews.Store(ctx, sessionID, files[0]); err != nil {
		logrus.Warnf("uploadHandler.run: storing preview of %s: %v", files[0].Name, err)
	}

	result, err := h.negotiation.Negotiate(ctx, sessionID, files)
	if err != nil {
		return nil, "", err
	}
	controls.Finish()
	return result, files[0].Name, nil
}

// formFiles opens every file of the multipart "files" field.
func formFiles(c *gin.Context) ([]port.UploadFile, func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, multipart.ErrMessageTooLarge) {
			return nil, func() {}, fmt.Errorf("reading selection: %w", domain.ErrFileTooLarge)
		}
		return nil, func() {}, fmt.Errorf("reading selection: %w: %v", domain.ErrNoFiles, err)
	}

	headers := form.File["files"]
	opened := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	files := make([]port.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("opening %s: %w", fh.Filename, err)
		}
		opened = append(opened, f)
		files = append(files, port.UploadFile{
			Name:        fh.Filename,
			Size:        fh.Size,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     f,
		})
	}
	return files, closeAll, nil
}
