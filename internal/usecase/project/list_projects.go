package project

import (
	"context"

	domain "smart-task-tracker/internal/domain/project"
	"smart-task-tracker/internal/usecase/repository"
)

// ListProjectsUsecase はプロジェクト一覧取得ユースケース。
type ListProjectsUsecase struct {
	Repo repository.ProjectRepository
}

// Execute はすべてのプロジェクトを作成順で取得する。
func (uc *ListProjectsUsecase) Execute(ctx context.Context) ([]*domain.Project, error) {
	projects, err := uc.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []*domain.Project{}
	}
	return projects, nil
}
