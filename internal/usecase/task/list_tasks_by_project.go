package task

import (
	"context"

	domain "smart-task-tracker/internal/domain/task"
	"smart-task-tracker/internal/usecase/repository"
)

// ListTasksByProjectUsecase は projectID ごとのタスク一覧取得ユースケース。
type ListTasksByProjectUsecase struct {
	Tx repository.Transactor
}

// ListTasksByProjectInput の Status が nil なら全件を返す。
type ListTasksByProjectInput struct {
	ProjectID string
	Status    *string
}

// Execute はプロジェクトのタスクを挿入順で返す。
// 該当なしは空スライス、プロジェクトが存在しなければ ProjectNotFound。
func (uc *ListTasksByProjectUsecase) Execute(ctx context.Context, in ListTasksByProjectInput) ([]*domain.Task, error) {
	var status *domain.TaskStatus
	if in.Status != nil {
		parsed, err := domain.ParseStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		status = &parsed
	}

	var out []*domain.Task
	err := uc.Tx.Atomic(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Projects.FindByID(ctx, in.ProjectID); err != nil {
			return err
		}
		tasks, err := repos.Tasks.ListByProject(ctx, in.ProjectID, status)
		if err != nil {
			return err
		}
		out = tasks
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out == nil {
		out = []*domain.Task{}
	}
	return out, nil
}
