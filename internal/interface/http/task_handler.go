package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"smart-task-tracker/internal/domain/apperror"
	domain "smart-task-tracker/internal/domain/task"
	"smart-task-tracker/internal/interface/httpjson"
	usecase "smart-task-tracker/internal/usecase/task"
)

// TaskHandler はタスクの作成・一覧・更新・削除を処理する HTTP ハンドラ。
//
// 責務:
//   - パスから projectId / taskId を取り出す
//   - リクエストボディを読み、部分更新は未指定・null・値ありを区別して Patch に変換する
//   - status / priority の文字列はユースケース層で Parse する
type TaskHandler struct {
	createUC *usecase.CreateTaskUsecase
	listUC   *usecase.ListTasksByProjectUsecase
	updateUC *usecase.UpdateTaskUsecase
	deleteUC *usecase.DeleteTaskUsecase
	nowFunc  func() time.Time
}

// NewTaskHandler は TaskHandler を生成する。
func NewTaskHandler(
	createUC *usecase.CreateTaskUsecase,
	listUC *usecase.ListTasksByProjectUsecase,
	updateUC *usecase.UpdateTaskUsecase,
	deleteUC *usecase.DeleteTaskUsecase,
	nowFunc func() time.Time,
) *TaskHandler {
	if nowFunc == nil {
		nowFunc = time.Now
	}
	return &TaskHandler{
		createUC: createUC,
		listUC:   listUC,
		updateUC: updateUC,
		deleteUC: deleteUC,
		nowFunc:  nowFunc,
	}
}

// Register はルートを登録する。
func (h *TaskHandler) Register(api *gin.RouterGroup) {
	api.GET("/projects/:id/tasks", h.list)
	api.POST("/projects/:id/tasks", h.create)
	api.PATCH("/tasks/:id", h.update)
	api.DELETE("/tasks/:id", h.delete)
}

// createTaskRequest は POST /api/projects/{id}/tasks のリクエストボディ。
type createTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
}

// patchTaskRequest は PATCH /api/tasks/{id} のリクエストボディ。
type patchTaskRequest struct {
	Title       httpjson.Nullable[string] `json:"title"`
	Description httpjson.Nullable[string] `json:"description"`
	Status      httpjson.Nullable[string] `json:"status"`
	Priority    httpjson.Nullable[string] `json:"priority"`
}

func (h *TaskHandler) list(c *gin.Context) {
	in := usecase.ListTasksByProjectInput{ProjectID: c.Param("id")}
	if raw, ok := c.GetQuery("status"); ok {
		in.Status = &raw
	}

	tasks, err := h.listUC.Execute(c.Request.Context(), in)
	if err != nil {
		writeError(c, locationQuery, err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponses(tasks))
}

func (h *TaskHandler) create(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c, err)
		return
	}

	t, err := h.createUC.Execute(c.Request.Context(), usecase.CreateTaskInput{
		ProjectID:   c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Now:         h.nowFunc(),
	})
	if err != nil {
		writeError(c, locationBody, err)
		return
	}

	c.JSON(http.StatusCreated, toTaskResponse(t))
}

func (h *TaskHandler) update(c *gin.Context) {
	var req patchTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c, err)
		return
	}

	in := usecase.UpdateTaskInput{
		ID:          c.Param("id"),
		Title:       toPatch(req.Title),
		Description: toPatch(req.Description),
		StatusStr:   req.Status.Ptr(),
		PriorityStr: req.Priority.Ptr(),
		Now:         h.nowFunc(),
	}

	// status / priority に null は指定できない
	if req.Status.IsNull() {
		writeError(c, locationBody, apperror.NewInvalidEnum("status", apperror.ErrInvalidStatus, "null"))
		return
	}
	if req.Priority.IsNull() {
		writeError(c, locationBody, apperror.NewInvalidEnum("priority", apperror.ErrInvalidPriority, "null"))
		return
	}

	t, err := h.updateUC.Execute(c.Request.Context(), in)
	if err != nil {
		writeError(c, locationBody, err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(t))
}

func (h *TaskHandler) delete(c *gin.Context) {
	if err := h.deleteUC.Execute(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, locationBody, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// toPatch は JSON の未指定・null・値ありを Patch に写す。
func toPatch(n httpjson.Nullable[string]) domain.Patch[string] {
	switch {
	case !n.Set:
		return domain.Unset[string]()
	case !n.Valid:
		return domain.Null[string]()
	default:
		return domain.Set(n.Val)
	}
}
