package task

import (
	"strings"
	"time"

	"smart-task-tracker/internal/domain/apperror"
)

// TaskPatch は PATCH /api/tasks/{id} で指定できる更新内容。
type TaskPatch struct {
	Title       Patch[string]
	Description Patch[string]
	Status      Patch[TaskStatus]
	Priority    Patch[TaskPriority]
}

// IsEmpty は更新対象が一つも指定されていない場合に true を返す。
func (p TaskPatch) IsEmpty() bool {
	return !p.Title.IsSet && !p.Description.IsSet && !p.Status.IsSet && !p.Priority.IsSet
}

// ApplyPatch は patch を検証してからタスクに反映する。
// 検証に失敗した場合、タスクは一切変更されない。
// description の null は説明の削除、title/status/priority の null はエラー。
func (t *Task) ApplyPatch(p TaskPatch, now time.Time) error {
	if p.IsEmpty() {
		return apperror.NewRequired("body", apperror.ErrEmptyPatch)
	}

	next := *t

	if p.Title.IsSet {
		if p.Title.IsNull {
			return apperror.NewRequired("title", apperror.ErrEmptyTitle)
		}
		title := strings.TrimSpace(p.Title.Value)
		if title == "" {
			return apperror.NewRequired("title", apperror.ErrEmptyTitle)
		}
		next.Title = title
	}

	if p.Description.IsSet {
		if p.Description.IsNull {
			next.Description = ""
		} else {
			next.Description = p.Description.Value
		}
	}

	if p.Status.IsSet {
		if p.Status.IsNull || !isValidStatus(p.Status.Value) {
			return apperror.NewInvalidEnum("status", apperror.ErrInvalidStatus, string(p.Status.Value))
		}
		next.Status = p.Status.Value
	}

	if p.Priority.IsSet {
		if p.Priority.IsNull || !isValidPriority(p.Priority.Value) {
			return apperror.NewInvalidEnum("priority", apperror.ErrInvalidPriority, string(p.Priority.Value))
		}
		next.Priority = p.Priority.Value
	}

	next.UpdatedAt = now
	*t = next
	return nil
}
