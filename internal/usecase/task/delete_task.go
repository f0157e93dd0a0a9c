package task

import (
	"context"

	"smart-task-tracker/internal/usecase/repository"
)

// DeleteTaskUsecase はタスクを 1 件削除する。
type DeleteTaskUsecase struct {
	Repo repository.TaskRepository
}

// Execute は ID のタスクを削除する。未存在なら TaskNotFound。
func (uc *DeleteTaskUsecase) Execute(ctx context.Context, id string) error {
	return uc.Repo.Delete(ctx, id)
}
