package project

import (
	"context"
	"fmt"
	"time"

	domain "smart-task-tracker/internal/domain/project"
	"smart-task-tracker/internal/usecase/repository"
)

// CreateProjectInput はプロジェクト作成ユースケースの入力。
type CreateProjectInput struct {
	Name string
	Now  time.Time
}

// CreateProjectUsecase はプロジェクト作成ユースケースを表す。
type CreateProjectUsecase struct {
	Repo  repository.ProjectRepository
	NewID repository.IDGenerator
}

// Execute は新しいプロジェクトを作成し、リポジトリに保存する。
// ID はシステムが払い出し、タスクは持たない状態で作られる。
func (uc *CreateProjectUsecase) Execute(ctx context.Context, in CreateProjectInput) (*domain.Project, error) {
	p, err := domain.NewProject(uc.nextID(), in.Name, in.Now)
	if err != nil {
		return nil, err
	}

	if err := uc.Repo.Save(ctx, p); err != nil {
		return p, fmt.Errorf("save project: %w", err)
	}

	return p, nil
}

func (uc *CreateProjectUsecase) nextID() string {
	if uc.NewID != nil {
		return uc.NewID()
	}
	return repository.NewUUIDv7()
}
