package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ppm/internal/domain"
	"ppm/internal/middleware"
	"ppm/internal/service"
)

// FolderHandler lists server-side work folders and opens one in the viewer.
type FolderHandler struct {
	folders service.FolderService
}

// NewFolderHandler creates a new FolderHandler.
func NewFolderHandler(folders service.FolderService) *FolderHandler {
	return &FolderHandler{folders: folders}
}

// OpenFolderRequest is the body of POST /api/v1/folders/open.
type OpenFolderRequest struct {
	Route string `json:"route" binding:"required" example:"public/Jalisco/Guadalajara/obra-7"`
}

// Page handles GET /folders/:state/:city
func (h *FolderHandler) Page(c *gin.Context) {
	listing, err := h.folders.List(c.Request.Context(), c.Param("state"), c.Param("city"))
	if err != nil {
		status, _, _ := MapDomainError(err)
		c.HTML(status, "folders.tmpl", gin.H{"Listing": &domain.FolderListing{State: c.Param("state"), City: c.Param("city")}})
		return
	}
	c.HTML(http.StatusOK, "folders.tmpl", gin.H{"Listing": listing})
}

// OpenForm handles POST /folders/open
func (h *FolderHandler) OpenForm(c *gin.Context) {
	if err := h.folders.Open(c.Request.Context(), middleware.GetSessionID(c), domain.Route(c.PostForm("route"))); err != nil {
		HandleError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/viewer")
}

// List handles GET /api/v1/folders/:state/:city
// @Summary List folders of a location
// @Description Lists work folders under state/city, flagging those with a cached analysis
// @Tags folders
// @Produce json
// @Param state path string true "State"
// @Param city path string true "City"
// @Success 200 {object} Response{data=domain.FolderListing}
// @Failure 404 {object} ErrorResponseBody
// @Failure 502 {object} ErrorResponseBody
// @Router /folders/{state}/{city} [get]
func (h *FolderHandler) List(c *gin.Context) {
	listing, err := h.folders.List(c.Request.Context(), c.Param("state"), c.Param("city"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, listing)
}

// Open handles POST /api/v1/folders/open
// @Summary Open a folder in the viewer
// @Tags folders
// @Accept json
// @Produce json
// @Param body body OpenFolderRequest true "Folder route"
// @Success 200 {object} Response{data=MessageResponse}
// @Failure 400 {object} ErrorResponseBody
// @Router /folders/open [post]
func (h *FolderHandler) Open(c *gin.Context) {
	var req OpenFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if err := h.folders.Open(c.Request.Context(), middleware.GetSessionID(c), domain.Route(req.Route)); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, MessageResponse{Message: "folder opened"})
}
