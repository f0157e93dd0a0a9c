package task

import (
	"context"
	"fmt"
	"time"

	domain "smart-task-tracker/internal/domain/task"
	"smart-task-tracker/internal/usecase/repository"
)

// CreateTaskInput はタスク作成ユースケースの入力。
// Description/Status/Priority の nil は未指定を表し、Status=Todo, Priority=Med が補われる。
type CreateTaskInput struct {
	ProjectID   string
	Title       string
	Description *string
	Status      *string
	Priority    *string
	Now         time.Time
}

// CreateTaskUsecase はタスク作成ユースケースを表す。
type CreateTaskUsecase struct {
	Tx    repository.Transactor
	NewID repository.IDGenerator
}

// Execute は新しいタスクを作成し、リポジトリに保存する。
// 入力の検証を先に行い、その後プロジェクトの存在確認と保存を同じ原子的単位で行う。
func (uc *CreateTaskUsecase) Execute(ctx context.Context, in CreateTaskInput) (*domain.Task, error) {
	t, err := domain.NewTask(uc.nextID(), in.ProjectID, domain.Draft{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
	}, in.Now)
	if err != nil {
		return nil, err
	}

	err = uc.Tx.Atomic(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Projects.FindByID(ctx, in.ProjectID); err != nil {
			return err
		}
		if err := repos.Tasks.Save(ctx, t); err != nil {
			return fmt.Errorf("save task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

func (uc *CreateTaskUsecase) nextID() string {
	if uc.NewID != nil {
		return uc.NewID()
	}
	return repository.NewUUIDv7()
}
