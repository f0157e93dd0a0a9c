package repository

import (
	"context"

	projectdomain "smart-task-tracker/internal/domain/project"
	taskdomain "smart-task-tracker/internal/domain/task"
)

// ProjectRepository はプロジェクトの永続化・取得を担当する抽象。
// 未存在の ID には apperror.ProjectNotFound を返す。
type ProjectRepository interface {
	Save(ctx context.Context, p *projectdomain.Project) error
	Update(ctx context.Context, p *projectdomain.Project) error
	FindByID(ctx context.Context, id string) (*projectdomain.Project, error)
	// List は作成順でプロジェクトを返す。
	List(ctx context.Context) ([]*projectdomain.Project, error)
	Delete(ctx context.Context, id string) error
}

// TaskRepository はタスクの永続化・取得を担当する抽象。
// 未存在の ID には apperror.TaskNotFound を返す。
type TaskRepository interface {
	Save(ctx context.Context, t *taskdomain.Task) error
	Update(ctx context.Context, t *taskdomain.Task) error
	FindByID(ctx context.Context, id string) (*taskdomain.Task, error)
	// ListByProject は挿入順でタスクを返す。status が nil なら全件。
	ListByProject(ctx context.Context, projectID string, status *taskdomain.TaskStatus) ([]*taskdomain.Task, error)
	Delete(ctx context.Context, id string) error
	// DeleteByProject はプロジェクト配下のタスクを全削除する。対象がなくてもエラーにしない。
	DeleteByProject(ctx context.Context, projectID string) error
}

// Repositories は 1 つの原子的な作業単位に束縛されたリポジトリの組。
type Repositories struct {
	Projects ProjectRepository
	Tasks    TaskRepository
}

// Transactor は複数のリポジトリ操作を 1 つの原子的な単位として実行する。
// fn がエラーを返した場合、fn 内の変更はすべて破棄される。
// fn の実行中、他の読み手から途中状態は見えない。
type Transactor interface {
	Atomic(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// Store はストア実装が満たすべき全体のインターフェース。
type Store interface {
	Transactor
	Projects() ProjectRepository
	Tasks() TaskRepository
	Close() error
}
