package cli

import (
	"context"
	"strings"
	"time"

	domain "smart-task-tracker/internal/domain/project"
	projectuc "smart-task-tracker/internal/usecase/project"
	"smart-task-tracker/internal/usecase/repository"
)

// EnsureDefaultProject は name と同名のプロジェクトが無ければ作成する。
// 既に存在する場合は最初に見つかったものを返し、created は false になる。
func EnsureDefaultProject(ctx context.Context, store repository.Store, name string, now time.Time) (p *domain.Project, created bool, err error) {
	list := &projectuc.ListProjectsUsecase{Repo: store.Projects()}
	projects, err := list.Execute(ctx)
	if err != nil {
		return nil, false, err
	}

	want := strings.TrimSpace(name)
	for _, existing := range projects {
		if existing.Name == want {
			return existing, false, nil
		}
	}

	create := &projectuc.CreateProjectUsecase{Repo: store.Projects()}
	p, err = create.Execute(ctx, projectuc.CreateProjectInput{Name: want, Now: now})
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}
