package storeinfra_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"smart-task-tracker/internal/domain/apperror"
	projectdomain "smart-task-tracker/internal/domain/project"
	taskdomain "smart-task-tracker/internal/domain/task"
	"smart-task-tracker/internal/usecase/repository"
)

// runStoreContract は全ストア実装が満たすべき振る舞いを検証する。
// newStore は呼ばれるたびに空のストアを返すこと。
func runStoreContract(t *testing.T, newStore func(t *testing.T) repository.Store) {
	t.Run("ProjectSaveFindList", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		mustSaveProject(t, s, "proj-1", "Alpha")
		mustSaveProject(t, s, "proj-2", "Beta")

		got, err := s.Projects().FindByID(ctx, "proj-1")
		if err != nil {
			t.Fatalf("FindByID returned error: %v", err)
		}
		if got.Name != "Alpha" {
			t.Errorf("expected name Alpha, got %q", got.Name)
		}

		list, err := s.Projects().List(ctx)
		if err != nil {
			t.Fatalf("List returned error: %v", err)
		}
		if len(list) != 2 || list[0].ID != "proj-1" || list[1].ID != "proj-2" {
			t.Fatalf("expected [proj-1 proj-2] in creation order, got %v", projectIDs(list))
		}
	})

	t.Run("ProjectNotFound", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if _, err := s.Projects().FindByID(ctx, "missing"); !apperror.IsNotFound(err, apperror.ResourceProject) {
			t.Errorf("FindByID: expected project not found, got %v", err)
		}
		if err := s.Projects().Delete(ctx, "missing"); !apperror.IsNotFound(err, apperror.ResourceProject) {
			t.Errorf("Delete: expected project not found, got %v", err)
		}
		p := newProject(t, "missing", "Ghost")
		if err := s.Projects().Update(ctx, p); !apperror.IsNotFound(err, apperror.ResourceProject) {
			t.Errorf("Update: expected project not found, got %v", err)
		}
	})

	t.Run("ProjectDuplicateID", func(t *testing.T) {
		s := newStore(t)
		mustSaveProject(t, s, "proj-1", "Alpha")

		err := s.Projects().Save(context.Background(), newProject(t, "proj-1", "Again"))
		if !errors.Is(err, apperror.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("ProjectUpdate", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		p := mustSaveProject(t, s, "proj-1", "Alpha")

		if err := p.Rename("Renamed", p.CreatedAt.Add(time.Minute)); err != nil {
			t.Fatalf("Rename returned error: %v", err)
		}
		if err := s.Projects().Update(ctx, p); err != nil {
			t.Fatalf("Update returned error: %v", err)
		}

		got, err := s.Projects().FindByID(ctx, "proj-1")
		if err != nil {
			t.Fatalf("FindByID returned error: %v", err)
		}
		if got.Name != "Renamed" {
			t.Errorf("expected Renamed, got %q", got.Name)
		}
		if !got.UpdatedAt.Equal(p.UpdatedAt) {
			t.Errorf("expected UpdatedAt %v, got %v", p.UpdatedAt, got.UpdatedAt)
		}
	})

	t.Run("TaskSaveAndListByProject", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		mustSaveProject(t, s, "proj-1", "Alpha")
		mustSaveProject(t, s, "proj-2", "Beta")

		mustSaveTask(t, s, "task-1", "proj-1", "first", taskdomain.StatusTodo)
		mustSaveTask(t, s, "task-2", "proj-2", "other", taskdomain.StatusTodo)
		mustSaveTask(t, s, "task-3", "proj-1", "second", taskdomain.StatusDone)
		mustSaveTask(t, s, "task-4", "proj-1", "third", taskdomain.StatusTodo)

		all, err := s.Tasks().ListByProject(ctx, "proj-1", nil)
		if err != nil {
			t.Fatalf("ListByProject returned error: %v", err)
		}
		if got := taskIDs(all); fmt.Sprint(got) != "[task-1 task-3 task-4]" {
			t.Fatalf("expected insertion order [task-1 task-3 task-4], got %v", got)
		}
		for _, tk := range all {
			if tk.ProjectID != "proj-1" {
				t.Errorf("expected ProjectID=proj-1, got %s", tk.ProjectID)
			}
		}

		todo := taskdomain.StatusTodo
		filtered, err := s.Tasks().ListByProject(ctx, "proj-1", &todo)
		if err != nil {
			t.Fatalf("ListByProject(filter) returned error: %v", err)
		}
		if got := taskIDs(filtered); fmt.Sprint(got) != "[task-1 task-4]" {
			t.Fatalf("expected [task-1 task-4], got %v", got)
		}

		inProgress := taskdomain.StatusInProgress
		none, err := s.Tasks().ListByProject(ctx, "proj-1", &inProgress)
		if err != nil {
			t.Fatalf("ListByProject(no match) returned error: %v", err)
		}
		if none == nil || len(none) != 0 {
			t.Fatalf("expected empty non-nil slice, got %#v", none)
		}
	})

	t.Run("TaskDescriptionRoundTrip", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		mustSaveProject(t, s, "proj-1", "Alpha")

		desc := "details here"
		tk := newTask(t, "task-1", "proj-1", taskdomain.Draft{Title: "with desc", Description: &desc})
		if err := s.Tasks().Save(ctx, tk); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
		mustSaveTask(t, s, "task-2", "proj-1", "without desc", taskdomain.StatusTodo)

		got, err := s.Tasks().FindByID(ctx, "task-1")
		if err != nil {
			t.Fatalf("FindByID returned error: %v", err)
		}
		if got.Description != desc {
			t.Errorf("expected description %q, got %q", desc, got.Description)
		}
		if got.Priority != taskdomain.PriorityMedium {
			t.Errorf("expected default priority Med, got %q", got.Priority)
		}

		got2, err := s.Tasks().FindByID(ctx, "task-2")
		if err != nil {
			t.Fatalf("FindByID returned error: %v", err)
		}
		if got2.Description != "" {
			t.Errorf("expected empty description, got %q", got2.Description)
		}
	})

	t.Run("TaskSaveUnknownProject", func(t *testing.T) {
		s := newStore(t)
		tk := newTask(t, "task-1", "ghost", taskdomain.Draft{Title: "orphan"})

		err := s.Tasks().Save(context.Background(), tk)
		if !apperror.IsNotFound(err, apperror.ResourceProject) {
			t.Fatalf("expected project not found, got %v", err)
		}
	})

	t.Run("TaskUpdateKeepsProjectID", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		mustSaveProject(t, s, "proj-1", "Alpha")
		mustSaveProject(t, s, "proj-2", "Beta")
		tk := mustSaveTask(t, s, "task-1", "proj-1", "move me", taskdomain.StatusTodo)

		tk.Status = taskdomain.StatusDone
		tk.ProjectID = "proj-2"
		if err := s.Tasks().Update(ctx, tk); err != nil {
			t.Fatalf("Update returned error: %v", err)
		}

		got, err := s.Tasks().FindByID(ctx, "task-1")
		if err != nil {
			t.Fatalf("FindByID returned error: %v", err)
		}
		if got.Status != taskdomain.StatusDone {
			t.Errorf("expected Done, got %q", got.Status)
		}
		if got.ProjectID != "proj-1" {
			t.Errorf("expected project_id to stay proj-1, got %s", got.ProjectID)
		}
	})

	t.Run("TaskNotFound", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if _, err := s.Tasks().FindByID(ctx, "missing"); !apperror.IsNotFound(err, apperror.ResourceTask) {
			t.Errorf("FindByID: expected task not found, got %v", err)
		}
		if err := s.Tasks().Delete(ctx, "missing"); !apperror.IsNotFound(err, apperror.ResourceTask) {
			t.Errorf("Delete: expected task not found, got %v", err)
		}
		mustSaveProject(t, s, "proj-1", "Alpha")
		ghost := newTask(t, "missing", "proj-1", taskdomain.Draft{Title: "ghost"})
		if err := s.Tasks().Update(ctx, ghost); !apperror.IsNotFound(err, apperror.ResourceTask) {
			t.Errorf("Update: expected task not found, got %v", err)
		}
	})

	t.Run("DeleteByProjectIsIdempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		mustSaveProject(t, s, "proj-1", "Alpha")
		mustSaveTask(t, s, "task-1", "proj-1", "a", taskdomain.StatusTodo)

		for i := 0; i < 2; i++ {
			if err := s.Tasks().DeleteByProject(ctx, "proj-1"); err != nil {
				t.Fatalf("DeleteByProject #%d returned error: %v", i+1, err)
			}
		}
		if err := s.Tasks().DeleteByProject(ctx, "never-existed"); err != nil {
			t.Fatalf("DeleteByProject(unknown) returned error: %v", err)
		}

		left, err := s.Tasks().ListByProject(ctx, "proj-1", nil)
		if err != nil {
			t.Fatalf("ListByProject returned error: %v", err)
		}
		if len(left) != 0 {
			t.Fatalf("expected no tasks, got %v", taskIDs(left))
		}
	})

	t.Run("AtomicCommit", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		mustSaveProject(t, s, "proj-1", "Alpha")
		mustSaveProject(t, s, "proj-2", "Beta")
		mustSaveTask(t, s, "task-1", "proj-1", "a", taskdomain.StatusTodo)
		mustSaveTask(t, s, "task-2", "proj-2", "b", taskdomain.StatusTodo)

		err := s.Atomic(ctx, func(ctx context.Context, repos repository.Repositories) error {
			if err := repos.Tasks.DeleteByProject(ctx, "proj-1"); err != nil {
				return err
			}
			return repos.Projects.Delete(ctx, "proj-1")
		})
		if err != nil {
			t.Fatalf("Atomic returned error: %v", err)
		}

		if _, err := s.Projects().FindByID(ctx, "proj-1"); !apperror.IsNotFound(err, apperror.ResourceProject) {
			t.Errorf("expected proj-1 to be gone, got %v", err)
		}
		if _, err := s.Tasks().FindByID(ctx, "task-1"); !apperror.IsNotFound(err, apperror.ResourceTask) {
			t.Errorf("expected task-1 to be gone, got %v", err)
		}
		if _, err := s.Tasks().FindByID(ctx, "task-2"); err != nil {
			t.Errorf("expected task-2 to survive, got %v", err)
		}
	})

	t.Run("AtomicRollback", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		mustSaveProject(t, s, "proj-1", "Alpha")
		mustSaveTask(t, s, "task-1", "proj-1", "a", taskdomain.StatusTodo)
		mustSaveTask(t, s, "task-2", "proj-1", "b", taskdomain.StatusTodo)

		boom := errors.New("boom")
		err := s.Atomic(ctx, func(ctx context.Context, repos repository.Repositories) error {
			if err := repos.Projects.Save(ctx, newProject(t, "proj-2", "Temp")); err != nil {
				return err
			}
			if err := repos.Tasks.DeleteByProject(ctx, "proj-1"); err != nil {
				return err
			}
			if err := repos.Projects.Delete(ctx, "proj-1"); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}

		if _, err := s.Projects().FindByID(ctx, "proj-1"); err != nil {
			t.Errorf("expected proj-1 restored, got %v", err)
		}
		if _, err := s.Projects().FindByID(ctx, "proj-2"); !apperror.IsNotFound(err, apperror.ResourceProject) {
			t.Errorf("expected proj-2 discarded, got %v", err)
		}

		tasks, err := s.Tasks().ListByProject(ctx, "proj-1", nil)
		if err != nil {
			t.Fatalf("ListByProject returned error: %v", err)
		}
		if got := taskIDs(tasks); fmt.Sprint(got) != "[task-1 task-2]" {
			t.Fatalf("expected tasks restored in order [task-1 task-2], got %v", got)
		}

		projects, err := s.Projects().List(ctx)
		if err != nil {
			t.Fatalf("List returned error: %v", err)
		}
		if got := projectIDs(projects); fmt.Sprint(got) != "[proj-1]" {
			t.Fatalf("expected [proj-1], got %v", got)
		}
	})
}

var baseTime = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

func newProject(t *testing.T, id, name string) *projectdomain.Project {
	t.Helper()
	p, err := projectdomain.NewProject(id, name, baseTime)
	if err != nil {
		t.Fatalf("NewProject returned error: %v", err)
	}
	return p
}

func newTask(t *testing.T, id, projectID string, d taskdomain.Draft) *taskdomain.Task {
	t.Helper()
	tk, err := taskdomain.NewTask(id, projectID, d, baseTime)
	if err != nil {
		t.Fatalf("NewTask returned error: %v", err)
	}
	return tk
}

func mustSaveProject(t *testing.T, s repository.Store, id, name string) *projectdomain.Project {
	t.Helper()
	p := newProject(t, id, name)
	if err := s.Projects().Save(context.Background(), p); err != nil {
		t.Fatalf("failed to save project %s: %v", id, err)
	}
	return p
}

func mustSaveTask(t *testing.T, s repository.Store, id, projectID, title string, status taskdomain.TaskStatus) *taskdomain.Task {
	t.Helper()
	st := string(status)
	tk := newTask(t, id, projectID, taskdomain.Draft{Title: title, Status: &st})
	if err := s.Tasks().Save(context.Background(), tk); err != nil {
		t.Fatalf("failed to save task %s: %v", id, err)
	}
	return tk
}

func projectIDs(ps []*projectdomain.Project) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func taskIDs(ts []*taskdomain.Task) []string {
	out := make([]string, 0, len(ts))
	for _, tk := range ts {
		out = append(out, tk.ID)
	}
	return out
}
