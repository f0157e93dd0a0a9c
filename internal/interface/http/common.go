package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"smart-task-tracker/internal/domain/apperror"
	projectdomain "smart-task-tracker/internal/domain/project"
	taskdomain "smart-task-tracker/internal/domain/task"
)

// エラーレスポンスの error 値
const (
	errCodeValidation  = "VALIDATION_ERROR"
	errCodeInvalidJSON = "INVALID_JSON"
	errCodeNotFound    = "NOT_FOUND"
	errCodeConflict    = "CONFLICT"
	errCodeInternal    = "INTERNAL_ERROR"
)

// projectResponse はプロジェクトのレスポンス用構造体。
type projectResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func toProjectResponse(p *projectdomain.Project) projectResponse {
	return projectResponse{ID: p.ID, Name: p.Name}
}

// taskResponse はタスクのレスポンス用構造体。description が空なら null。
type taskResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	ProjectID   string  `json:"project_id"`
}

func toTaskResponse(t *taskdomain.Task) taskResponse {
	resp := taskResponse{
		ID:        t.ID,
		Title:     t.Title,
		Status:    string(t.Status),
		Priority:  string(t.Priority),
		ProjectID: t.ProjectID,
	}
	if t.Description != "" {
		d := t.Description
		resp.Description = &d
	}
	return resp
}

func toTaskResponses(ts []*taskdomain.Task) []taskResponse {
	out := make([]taskResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTaskResponse(t))
	}
	return out
}

// ErrorResponse は 4xx/5xx の共通レスポンス。
type ErrorResponse struct {
	Error  string            `json:"error"`
	Detail string            `json:"detail"`
	Issues []ValidationIssue `json:"issues,omitempty"`
}

// writeError は err の種別に応じたステータスとボディを書き込む。
// 想定外のエラーは c.Error に積み、RequestLogger が原因をログに出す。
func writeError(c *gin.Context, location string, err error) {
	if issue, ok := toValidationIssue(location, err); ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Error:  errCodeValidation,
			Detail: err.Error(),
			Issues: []ValidationIssue{issue},
		})
		return
	}

	var nf *apperror.NotFoundError
	if errors.As(err, &nf) {
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{
			Error:  errCodeNotFound,
			Detail: nf.Error(),
		})
		return
	}

	if errors.Is(err, apperror.ErrConflict) {
		c.AbortWithStatusJSON(http.StatusConflict, ErrorResponse{
			Error:  errCodeConflict,
			Detail: err.Error(),
		})
		return
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error:  errCodeInternal,
		Detail: "internal server error",
	})
}

// writeInvalidJSON はボディが JSON として読めない場合の 400 を書き込む。
func writeInvalidJSON(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Error:  errCodeInvalidJSON,
		Detail: err.Error(),
	})
}
