package project_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"smart-task-tracker/internal/domain/apperror"
	domain "smart-task-tracker/internal/domain/project"
	taskdomain "smart-task-tracker/internal/domain/task"
	storeinfra "smart-task-tracker/internal/infrastructure/store"
	usecase "smart-task-tracker/internal/usecase/project"
	"smart-task-tracker/internal/usecase/repository"
)

// fakeProjectRepo は ProjectRepository のテスト用フェイク実装。
type fakeProjectRepo struct {
	saved    *domain.Project
	updated  *domain.Project
	findOut  *domain.Project
	listOut  []*domain.Project
	saveErr  error
	findHits int
	deleted  []string
}

func (r *fakeProjectRepo) Save(_ context.Context, p *domain.Project) error {
	r.saved = p
	return r.saveErr
}

func (r *fakeProjectRepo) Update(_ context.Context, p *domain.Project) error {
	r.updated = p
	return nil
}

func (r *fakeProjectRepo) FindByID(_ context.Context, id string) (*domain.Project, error) {
	r.findHits++
	if r.findOut != nil && r.findOut.ID == id {
		cp := *r.findOut
		return &cp, nil
	}
	return nil, apperror.ProjectNotFound(id)
}

func (r *fakeProjectRepo) List(_ context.Context) ([]*domain.Project, error) {
	return r.listOut, nil
}

func (r *fakeProjectRepo) Delete(_ context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	return nil
}

// fakeTransactor は fn を固定のリポジトリでそのまま実行する。
type fakeTransactor struct {
	repos repository.Repositories
}

func (f *fakeTransactor) Atomic(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	return fn(ctx, f.repos)
}

func fixedID(id string) func() string { return func() string { return id } }

func TestCreateProjectUsecase_Success(t *testing.T) {
	repo := &fakeProjectRepo{}
	uc := &usecase.CreateProjectUsecase{Repo: repo, NewID: fixedID("proj-1")}
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	p, err := uc.Execute(context.Background(), usecase.CreateProjectInput{Name: "  Launch  ", Now: now})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "proj-1" || p.Name != "Launch" {
		t.Fatalf("unexpected project: %+v", p)
	}
	if repo.saved != p {
		t.Fatal("expected project to be saved")
	}
}

func TestCreateProjectUsecase_DefaultIDGenerator(t *testing.T) {
	repo := &fakeProjectRepo{}
	uc := &usecase.CreateProjectUsecase{Repo: repo}

	a, err := uc.Execute(context.Background(), usecase.CreateProjectInput{Name: "A", Now: time.Now()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := uc.Execute(context.Background(), usecase.CreateProjectInput{Name: "B", Now: time.Now()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct non-empty IDs, got %q and %q", a.ID, b.ID)
	}
}

func TestCreateProjectUsecase_EmptyName(t *testing.T) {
	repo := &fakeProjectRepo{}
	uc := &usecase.CreateProjectUsecase{Repo: repo, NewID: fixedID("proj-1")}

	_, err := uc.Execute(context.Background(), usecase.CreateProjectInput{Name: "   ", Now: time.Now()})
	if !errors.Is(err, apperror.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if repo.saved != nil {
		t.Fatal("expected nothing to be saved")
	}
}

func TestCreateProjectUsecase_SaveErrorIsWrapped(t *testing.T) {
	boom := errors.New("db down")
	uc := &usecase.CreateProjectUsecase{Repo: &fakeProjectRepo{saveErr: boom}, NewID: fixedID("proj-1")}

	_, err := uc.Execute(context.Background(), usecase.CreateProjectInput{Name: "A", Now: time.Now()})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestListProjectsUsecase_EmptyIsNonNil(t *testing.T) {
	uc := &usecase.ListProjectsUsecase{Repo: &fakeProjectRepo{}}

	got, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestRenameProjectUsecase(t *testing.T) {
	created := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	later := created.Add(time.Hour)

	t.Run("success", func(t *testing.T) {
		repo := &fakeProjectRepo{findOut: &domain.Project{ID: "proj-1", Name: "Old", CreatedAt: created, UpdatedAt: created}}
		uc := &usecase.RenameProjectUsecase{Repo: repo}

		p, err := uc.Execute(context.Background(), usecase.RenameProjectInput{ID: "proj-1", Name: " New ", Now: later})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Name != "New" || !p.UpdatedAt.Equal(later) || !p.CreatedAt.Equal(created) {
			t.Fatalf("unexpected project: %+v", p)
		}
		if repo.updated == nil || repo.updated.Name != "New" {
			t.Fatal("expected renamed project to be persisted")
		}
	})

	t.Run("not found", func(t *testing.T) {
		uc := &usecase.RenameProjectUsecase{Repo: &fakeProjectRepo{}}

		_, err := uc.Execute(context.Background(), usecase.RenameProjectInput{ID: "ghost", Name: "X", Now: later})
		if !apperror.IsNotFound(err, apperror.ResourceProject) {
			t.Fatalf("expected project not found, got %v", err)
		}
	})

	t.Run("validation before lookup", func(t *testing.T) {
		repo := &fakeProjectRepo{}
		uc := &usecase.RenameProjectUsecase{Repo: repo}

		_, err := uc.Execute(context.Background(), usecase.RenameProjectInput{ID: "ghost", Name: "", Now: later})
		if !errors.Is(err, apperror.ErrEmptyName) {
			t.Fatalf("expected ErrEmptyName, got %v", err)
		}
		if repo.findHits != 0 {
			t.Fatalf("expected no lookup, got %d", repo.findHits)
		}
	})
}

func TestDeleteProjectUsecase_CascadesTasks(t *testing.T) {
	store := storeinfra.NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	create := &usecase.CreateProjectUsecase{Repo: store.Projects()}
	keep, err := create.Execute(ctx, usecase.CreateProjectInput{Name: "Keep", Now: now})
	if err != nil {
		t.Fatalf("create keep: %v", err)
	}
	drop, err := create.Execute(ctx, usecase.CreateProjectInput{Name: "Drop", Now: now})
	if err != nil {
		t.Fatalf("create drop: %v", err)
	}

	for i, pid := range []string{drop.ID, drop.ID, keep.ID} {
		tk, err := taskdomain.NewTask(string(rune('a'+i)), pid, taskdomain.Draft{Title: "t"}, now)
		if err != nil {
			t.Fatalf("NewTask: %v", err)
		}
		if err := store.Tasks().Save(ctx, tk); err != nil {
			t.Fatalf("save task: %v", err)
		}
	}

	uc := &usecase.DeleteProjectUsecase{Tx: store}
	if err := uc.Execute(ctx, drop.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := store.Projects().FindByID(ctx, drop.ID); !apperror.IsNotFound(err, apperror.ResourceProject) {
		t.Errorf("expected project gone, got %v", err)
	}
	gone, err := store.Tasks().ListByProject(ctx, drop.ID, nil)
	if err != nil {
		t.Fatalf("ListByProject: %v", err)
	}
	if len(gone) != 0 {
		t.Errorf("expected tasks of deleted project gone, got %d", len(gone))
	}
	kept, err := store.Tasks().ListByProject(ctx, keep.ID, nil)
	if err != nil {
		t.Fatalf("ListByProject: %v", err)
	}
	if len(kept) != 1 {
		t.Errorf("expected other project's task to survive, got %d", len(kept))
	}
}

func TestDeleteProjectUsecase_NotFound(t *testing.T) {
	uc := &usecase.DeleteProjectUsecase{Tx: storeinfra.NewMemoryStore()}

	err := uc.Execute(context.Background(), "ghost")
	if !apperror.IsNotFound(err, apperror.ResourceProject) {
		t.Fatalf("expected project not found, got %v", err)
	}
}

func TestDeleteProjectUsecase_DeletesWithoutLookup(t *testing.T) {
	projects := &fakeProjectRepo{}
	tx := &fakeTransactor{repos: repository.Repositories{
		Projects: projects,
		Tasks:    storeinfra.NewMemoryStore().Tasks(),
	}}
	uc := &usecase.DeleteProjectUsecase{Tx: tx}

	if err := uc.Execute(context.Background(), "proj-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if projects.findHits != 0 {
		t.Errorf("expected no lookup before delete, got %d", projects.findHits)
	}
	if len(projects.deleted) != 1 || projects.deleted[0] != "proj-1" {
		t.Errorf("unexpected deletes: %v", projects.deleted)
	}
}

// 同じプロジェクトを並行に削除すると、片方だけが成功し、もう片方は ProjectNotFound になること。
func TestDeleteProjectUsecase_ConcurrentDeletes(t *testing.T) {
	store := storeinfra.NewMemoryStore()
	ctx := context.Background()

	create := &usecase.CreateProjectUsecase{Repo: store.Projects()}
	p, err := create.Execute(ctx, usecase.CreateProjectInput{Name: "Drop", Now: time.Now()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	uc := &usecase.DeleteProjectUsecase{Tx: store}
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = uc.Execute(ctx, p.ID)
		}(i)
	}
	wg.Wait()

	var ok, notFound int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case apperror.IsNotFound(err, apperror.ResourceProject):
			notFound++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || notFound != 1 {
		t.Fatalf("expected one success and one not found, got %d and %d", ok, notFound)
	}
}
