package storeinfra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"smart-task-tracker/internal/domain/apperror"
	projectdomain "smart-task-tracker/internal/domain/project"
	taskdomain "smart-task-tracker/internal/domain/task"
	"smart-task-tracker/internal/usecase/repository"
)

// PostgreSQL のエラーコード
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// PostgresStore は PostgreSQL を使用したストア実装。
type PostgresStore struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// コンパイル時にインターフェース実装を保証する。
var _ repository.Store = (*PostgresStore)(nil)

// NewPostgresStore は既存のプールから PostgresStore を生成する。
func NewPostgresStore(db *pgxpool.Pool, timeout time.Duration) *PostgresStore {
	return &PostgresStore{
		db:      db,
		timeout: timeout,
	}
}

// OpenPostgres は dsn に接続して疎通を確認する。
func OpenPostgres(ctx context.Context, dsn string, timeout time.Duration) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	s := NewPostgresStore(pool, timeout)

	pctx, cancel := s.bounded(ctx)
	defer cancel()
	if err := pool.Ping(pctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return s, nil
}

// Migrate はスキーマを適用する。
func (s *PostgresStore) Migrate(ctx context.Context) error {
	schema, err := Schema("postgres")
	if err != nil {
		return err
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply postgres schema: %w", err)
	}
	return nil
}

// Close はプールを閉じる。
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

func (s *PostgresStore) Projects() repository.ProjectRepository {
	return &pgProjectRepository{q: s.db, bounded: s.bounded}
}

func (s *PostgresStore) Tasks() repository.TaskRepository {
	return &pgTaskRepository{q: s.db, bounded: s.bounded}
}

// Atomic は fn を 1 つのトランザクションで実行する。
// プロジェクトの存在確認は FOR SHARE で行を固定するので、並行するカスケード削除と交差しない。
func (s *PostgresStore) Atomic(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		return fn(ctx, repository.Repositories{
			Projects: &pgProjectRepository{q: tx, bounded: noTimeout, lockRows: true},
			Tasks:    &pgTaskRepository{q: tx, bounded: noTimeout},
		})
	})
}

func (s *PostgresStore) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return withStoreTimeout(ctx, s.timeout)
}

// pgQuerier は *pgxpool.Pool と pgx.Tx の共通部分。
type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// --- projects ---

type pgProjectRepository struct {
	q        pgQuerier
	bounded  boundFunc
	lockRows bool
}

func (r *pgProjectRepository) Save(ctx context.Context, p *projectdomain.Project) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	const q = `INSERT INTO projects (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.q.Exec(ctx, q, p.ID, p.Name, p.CreatedAt, p.UpdatedAt); err != nil {
		if pgCode(err) == pgUniqueViolation {
			return &apperror.ConflictError{Resource: apperror.ResourceProject, ID: p.ID}
		}
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

func (r *pgProjectRepository) Update(ctx context.Context, p *projectdomain.Project) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	const q = `UPDATE projects SET name = $1, updated_at = $2 WHERE id = $3`
	tag, err := r.q.Exec(ctx, q, p.Name, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ProjectNotFound(p.ID)
	}
	return nil
}

func (r *pgProjectRepository) FindByID(ctx context.Context, id string) (*projectdomain.Project, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	q := `SELECT id, name, created_at, updated_at FROM projects WHERE id = $1`
	if r.lockRows {
		q += ` FOR SHARE`
	}

	var p projectdomain.Project
	err := r.q.QueryRow(ctx, q, id).Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.ProjectNotFound(id)
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &p, nil
}

func (r *pgProjectRepository) List(ctx context.Context) ([]*projectdomain.Project, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	rows, err := r.q.Query(ctx, `SELECT id, name, created_at, updated_at FROM projects ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*projectdomain.Project, 0)
	for rows.Next() {
		var p projectdomain.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return projects, nil
}

func (r *pgProjectRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	tag, err := r.q.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ProjectNotFound(id)
	}
	return nil
}

// --- tasks ---

type pgTaskRepository struct {
	q       pgQuerier
	bounded boundFunc
}

const pgTaskColumns = `id, project_id, title, description, status, priority, created_at, updated_at`

func (r *pgTaskRepository) Save(ctx context.Context, t *taskdomain.Task) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	const q = `
		INSERT INTO tasks (
			id, project_id, title, description, status, priority, created_at, updated_at
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8
		)
	`
	_, err := r.q.Exec(ctx, q,
		t.ID, t.ProjectID, t.Title, nullIfEmpty(t.Description), string(t.Status), string(t.Priority), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		switch pgCode(err) {
		case pgForeignKeyViolation:
			return apperror.ProjectNotFound(t.ProjectID)
		case pgUniqueViolation:
			return &apperror.ConflictError{Resource: apperror.ResourceTask, ID: t.ID}
		}
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func (r *pgTaskRepository) Update(ctx context.Context, t *taskdomain.Task) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	const q = `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4, updated_at = $5
		WHERE id = $6
	`
	tag, err := r.q.Exec(ctx, q,
		t.Title, nullIfEmpty(t.Description), string(t.Status), string(t.Priority), t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.TaskNotFound(t.ID)
	}
	return nil
}

func (r *pgTaskRepository) FindByID(ctx context.Context, id string) (*taskdomain.Task, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	row := r.q.QueryRow(ctx, `SELECT `+pgTaskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.TaskNotFound(id)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// ListByProject は指定された projectID のタスクを挿入順で返す。
func (r *pgTaskRepository) ListByProject(ctx context.Context, projectID string, status *taskdomain.TaskStatus) ([]*taskdomain.Task, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	querySQL := `SELECT ` + pgTaskColumns + ` FROM tasks WHERE project_id = $1`
	args := []interface{}{projectID}
	if status != nil {
		querySQL += ` AND status = $2`
		args = append(args, string(*status))
	}
	querySQL += ` ORDER BY seq ASC`

	rows, err := r.q.Query(ctx, querySQL, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*taskdomain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return tasks, nil
}

func (r *pgTaskRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	tag, err := r.q.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.TaskNotFound(id)
	}
	return nil
}

func (r *pgTaskRepository) DeleteByProject(ctx context.Context, projectID string) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	if _, err := r.q.Exec(ctx, `DELETE FROM tasks WHERE project_id = $1`, projectID); err != nil {
		return fmt.Errorf("failed to delete tasks of project: %w", err)
	}
	return nil
}

func scanTask(row pgx.Row) (*taskdomain.Task, error) {
	var t taskdomain.Task
	var description sql.NullString
	var status, priority string

	err := row.Scan(
		&t.ID,
		&t.ProjectID,
		&t.Title,
		&description,
		&status,
		&priority,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Status = taskdomain.TaskStatus(status)
	t.Priority = taskdomain.TaskPriority(priority)
	if description.Valid {
		t.Description = description.String
	}
	return &t, nil
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
