package handler

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"ppm/internal/csvexport"
	"ppm/internal/domain"
	"ppm/internal/middleware"
	"ppm/internal/render"
	"ppm/internal/service"
)

// ViewerHandler serves the analysis viewer, its exports and report sharing.
type ViewerHandler struct {
	viewer  service.ViewerService
	reports service.ReportService
}

// NewViewerHandler creates a new ViewerHandler.
func NewViewerHandler(viewer service.ViewerService, reports service.ReportService) *ViewerHandler {
	return &ViewerHandler{viewer: viewer, reports: reports}
}

type viewerPage struct {
	Page          *service.ViewerPage
	PreviewSrc    template.URL
	Report        *render.Report
	NothingLoaded string
	Notice        string
}

// ShareRequest is the body of POST /api/v1/share.
type ShareRequest struct {
	Email string `json:"email" binding:"required" example:"ana@example.com"`
}

// SelectPublicRequest is the body of POST /api/v1/public.
type SelectPublicRequest struct {
	Location string `json:"location" binding:"required" example:"data/jalisco_analisis.json"`
}

// Show handles GET /viewer
func (h *ViewerHandler) Show(c *gin.Context) {
	open, _ := strconv.ParseBool(c.Query("details"))
	h.render(c, http.StatusOK, open, "")
}

// Details handles GET /viewer/details?open=true|false
func (h *ViewerHandler) Details(c *gin.Context) {
	open, _ := strconv.ParseBool(c.Query("open"))
	h.render(c, http.StatusOK, open, "")
}

func (h *ViewerHandler) render(c *gin.Context, status int, detailsOpen bool, notice string) {
	page, err := h.viewer.View(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		logrus.Errorf("viewerHandler.render: %v", err)
		page = &service.ViewerPage{Title: "Viewer", Error: domain.UserMessage(err)}
	}

	data := viewerPage{Page: page, NothingLoaded: render.NothingLoaded, Notice: notice}
	if page.PreviewURL != "" {
		data.PreviewSrc = template.URL(page.PreviewURL) //nolint:gosec // data: or presigned URL built server-side
	}
	if page.Analysis != nil {
		data.Report = render.Render(page.Analysis)
		if data.Report.Details != nil {
			data.Report.Details.Visible = detailsOpen
		}
	}
	c.HTML(status, "viewer.tmpl", data)
}

// View handles GET /api/v1/viewer
// @Summary Current viewer state
// @Description Returns the analysis held by the session, resolving it by route or from the public sample when needed
// @Tags viewer
// @Produce json
// @Success 200 {object} Response{data=service.ViewerPage}
// @Failure 500 {object} ErrorResponseBody
// @Router /viewer [get]
func (h *ViewerHandler) View(c *gin.Context) {
	page, err := h.viewer.View(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, page)
}

// ExportXLSX handles GET /viewer/export.xlsx
func (h *ViewerHandler) ExportXLSX(c *gin.Context) {
	page, ok := h.loadedPage(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="`+csvexport.BuildFilename(page.FileName, "xlsx")+`"`)
	if err := render.WriteXLSX(c.Writer, page.Analysis); err != nil {
		logrus.Errorf("viewerHandler.ExportXLSX: %v", err)
	}
}

// ExportCSV handles GET /viewer/export.csv
func (h *ViewerHandler) ExportCSV(c *gin.Context) {
	page, ok := h.loadedPage(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+csvexport.BuildFilename(page.FileName, "csv")+`"`)
	if err := csvexport.Export(c.Writer, page.Analysis); err != nil {
		logrus.Errorf("viewerHandler.ExportCSV: %v", err)
	}
}

// loadedPage returns the viewer page when it has an analysis to export.
func (h *ViewerHandler) loadedPage(c *gin.Context) (*service.ViewerPage, bool) {
	page, err := h.viewer.View(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		HandleError(c, err)
		return nil, false
	}
	if page.Analysis == nil {
		RespondError(c, http.StatusNotFound, "NO_ANALYSIS", "no analysis loaded")
		return nil, false
	}
	return page, true
}

// ShareForm handles POST /viewer/share from the viewer page.
func (h *ViewerHandler) ShareForm(c *gin.Context) {
	email := c.PostForm("email")
	if err := h.reports.Share(c.Request.Context(), middleware.GetSessionID(c), email); err != nil {
		status, _, msg := MapDomainError(err)
		h.render(c, status, false, "Could not share the report: "+msg)
		return
	}
	h.render(c, http.StatusOK, false, "Report sent to "+email+".")
}

// Share handles POST /api/v1/share
// @Summary Email the current report
// @Tags viewer
// @Accept json
// @Produce json
// @Param body body ShareRequest true "Recipient"
// @Success 200 {object} Response{data=MessageResponse}
// @Failure 400 {object} ErrorResponseBody "Invalid email"
// @Failure 404 {object} ErrorResponseBody "No analysis loaded"
// @Router /share [post]
func (h *ViewerHandler) Share(c *gin.Context) {
	var req ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if err := h.reports.Share(c.Request.Context(), middleware.GetSessionID(c), req.Email); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, MessageResponse{Message: "report sent"})
}

// SelectPublicForm handles POST /viewer/public
func (h *ViewerHandler) SelectPublicForm(c *gin.Context) {
	if err := h.viewer.SelectPublic(c.Request.Context(), middleware.GetSessionID(c), c.PostForm("location")); err != nil {
		logrus.Warnf("viewerHandler.SelectPublicForm: %v", err)
		status, _, msg := MapDomainError(err)
		h.render(c, status, false, "Could not select the public analysis: "+msg)
		return
	}
	c.Redirect(http.StatusSeeOther, "/viewer")
}

// SelectPublic handles POST /api/v1/public
// @Summary Select a public sample analysis
// @Tags viewer
// @Accept json
// @Produce json
// @Param body body SelectPublicRequest true "Location of the public analysis"
// @Success 200 {object} Response{data=MessageResponse}
// @Failure 400 {object} ErrorResponseBody "Location is not a relative path"
// @Router /public [post]
func (h *ViewerHandler) SelectPublic(c *gin.Context) {
	var req SelectPublicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if err := h.viewer.SelectPublic(c.Request.Context(), middleware.GetSessionID(c), req.Location); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, MessageResponse{Message: "public analysis selected"})
}
