package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	usecase "smart-task-tracker/internal/usecase/project"
)

// ProjectHandler は /api/projects 配下のプロジェクト操作を処理する HTTP ハンドラ。
type ProjectHandler struct {
	createUC *usecase.CreateProjectUsecase
	listUC   *usecase.ListProjectsUsecase
	renameUC *usecase.RenameProjectUsecase
	deleteUC *usecase.DeleteProjectUsecase
	nowFunc  func() time.Time
}

// NewProjectHandler は ProjectHandler を生成する。
func NewProjectHandler(
	createUC *usecase.CreateProjectUsecase,
	listUC *usecase.ListProjectsUsecase,
	renameUC *usecase.RenameProjectUsecase,
	deleteUC *usecase.DeleteProjectUsecase,
	nowFunc func() time.Time,
) *ProjectHandler {
	if nowFunc == nil {
		nowFunc = time.Now
	}
	return &ProjectHandler{
		createUC: createUC,
		listUC:   listUC,
		renameUC: renameUC,
		deleteUC: deleteUC,
		nowFunc:  nowFunc,
	}
}

// Register はルートを登録する。
func (h *ProjectHandler) Register(api *gin.RouterGroup) {
	api.GET("/projects", h.list)
	api.POST("/projects", h.create)
	api.PATCH("/projects/:id", h.rename)
	api.DELETE("/projects/:id", h.delete)
}

// projectRequest は POST/PATCH /api/projects のリクエストボディ。
type projectRequest struct {
	Name string `json:"name"`
}

func (h *ProjectHandler) list(c *gin.Context) {
	projects, err := h.listUC.Execute(c.Request.Context())
	if err != nil {
		writeError(c, locationQuery, err)
		return
	}

	resp := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		resp = append(resp, toProjectResponse(p))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProjectHandler) create(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c, err)
		return
	}

	p, err := h.createUC.Execute(c.Request.Context(), usecase.CreateProjectInput{
		Name: req.Name,
		Now:  h.nowFunc(),
	})
	if err != nil {
		writeError(c, locationBody, err)
		return
	}

	c.JSON(http.StatusCreated, toProjectResponse(p))
}

func (h *ProjectHandler) rename(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c, err)
		return
	}

	p, err := h.renameUC.Execute(c.Request.Context(), usecase.RenameProjectInput{
		ID:   c.Param("id"),
		Name: req.Name,
		Now:  h.nowFunc(),
	})
	if err != nil {
		writeError(c, locationBody, err)
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(p))
}

func (h *ProjectHandler) delete(c *gin.Context) {
	if err := h.deleteUC.Execute(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, locationBody, err)
		return
	}
	c.Status(http.StatusNoContent)
}
