package project

import (
	"context"
	"time"

	domain "smart-task-tracker/internal/domain/project"
	"smart-task-tracker/internal/usecase/repository"
)

// RenameProjectInput はプロジェクト名変更ユースケースの入力。
type RenameProjectInput struct {
	ID   string
	Name string
	Now  time.Time
}

// RenameProjectUsecase はプロジェクト名変更ユースケースを表す。
type RenameProjectUsecase struct {
	Repo repository.ProjectRepository
}

// Execute は既存プロジェクトを取得し、名前と UpdatedAt を更新する。
func (uc *RenameProjectUsecase) Execute(ctx context.Context, in RenameProjectInput) (*domain.Project, error) {
	// 存在確認より先に入力を検証する
	if _, err := domain.ValidateName(in.Name); err != nil {
		return nil, err
	}

	existing, err := uc.Repo.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if err := existing.Rename(in.Name, in.Now); err != nil {
		return nil, err
	}

	if err := uc.Repo.Update(ctx, existing); err != nil {
		return existing, err
	}

	return existing, nil
}
