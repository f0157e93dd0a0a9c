package task

import (
	"context"
	"time"

	domain "smart-task-tracker/internal/domain/task"
	"smart-task-tracker/internal/usecase/repository"
)

// UpdateTaskInput はタスク更新ユースケースの入力。
// HTTP 層から受け取った情報を TaskPatch に変換する。
type UpdateTaskInput struct {
	ID          string
	Title       domain.Patch[string]
	Description domain.Patch[string]
	StatusStr   *string
	PriorityStr *string
	Now         time.Time
}

// UpdateTaskUsecase はタスク更新ユースケースを表す。
// 同じタスクへの同時更新は後勝ち。別タスクへの更新は互いに待たない。
type UpdateTaskUsecase struct {
	Repo repository.TaskRepository
}

// Execute は既存タスクを取得し、指定されたフィールドを更新する。
func (uc *UpdateTaskUsecase) Execute(ctx context.Context, in UpdateTaskInput) (*domain.Task, error) {
	patch := domain.TaskPatch{
		Title:       in.Title,
		Description: in.Description,
	}

	// Status (Usecase 層で Parse)
	if in.StatusStr != nil {
		parsed, err := domain.ParseStatus(*in.StatusStr)
		if err != nil {
			return nil, err
		}
		patch.Status = domain.Set(parsed)
	}

	// Priority (Usecase 層で Parse)
	if in.PriorityStr != nil {
		parsed, err := domain.ParsePriority(*in.PriorityStr)
		if err != nil {
			return nil, err
		}
		patch.Priority = domain.Set(parsed)
	}

	existing, err := uc.Repo.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if err := existing.ApplyPatch(patch, in.Now); err != nil {
		return nil, err
	}

	if err := uc.Repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	return existing, nil
}

// ChangeStatus は status だけを更新する。任意の status から任意の status へ遷移できる。
func (uc *UpdateTaskUsecase) ChangeStatus(ctx context.Context, id, status string, now time.Time) (*domain.Task, error) {
	return uc.Execute(ctx, UpdateTaskInput{
		ID:        id,
		StatusStr: &status,
		Now:       now,
	})
}
