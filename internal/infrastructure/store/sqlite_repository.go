package storeinfra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"smart-task-tracker/internal/domain/apperror"
	projectdomain "smart-task-tracker/internal/domain/project"
	taskdomain "smart-task-tracker/internal/domain/task"
	"smart-task-tracker/internal/usecase/repository"
)

// SQLiteStore は SQLite（modernc.org/sqlite、CGO 不要）を使ったストア実装。
// 書き込みを直列化するため接続は 1 本に制限する。
type SQLiteStore struct {
	db      *sqlx.DB
	timeout time.Duration
}

// コンパイル時にインターフェース実装を保証する。
var _ repository.Store = (*SQLiteStore)(nil)

// sqliteTimeLayout は TEXT 列に保存する時刻の形式。
const sqliteTimeLayout = time.RFC3339Nano

// OpenSQLite は dsn の SQLite を開き、外部キー制約を有効にする。
// dsn が ":memory:" の場合はプロセス内の一時 DB になる。
func OpenSQLite(ctx context.Context, dsn string, timeout time.Duration) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", sqliteDSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, timeout: timeout}

	pctx, cancel := s.bounded(ctx)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return s, nil
}

// sqliteDSN は foreign_keys と busy_timeout の pragma を付与した DSN を返す。
func sqliteDSN(dsn string) string {
	if dsn == "" || dsn == ":memory:" {
		dsn = "file::memory:"
	}
	if strings.Contains(dsn, "_pragma=foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Migrate はスキーマを適用する。
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	schema, err := Schema("sqlite")
	if err != nil {
		return err
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply sqlite schema: %w", err)
	}
	return nil
}

// Close は DB をクローズする。
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Projects は自動コミットで動くプロジェクトリポジトリを返す。
func (s *SQLiteStore) Projects() repository.ProjectRepository {
	return &sqliteProjectRepository{q: s.db, bounded: s.bounded}
}

// Tasks は自動コミットで動くタスクリポジトリを返す。
func (s *SQLiteStore) Tasks() repository.TaskRepository {
	return &sqliteTaskRepository{q: s.db, bounded: s.bounded}
}

// Atomic は fn を 1 つのトランザクションで実行する。
func (s *SQLiteStore) Atomic(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	repos := repository.Repositories{
		Projects: &sqliteProjectRepository{q: tx, bounded: noTimeout},
		Tasks:    &sqliteTaskRepository{q: tx, bounded: noTimeout},
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *SQLiteStore) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return withStoreTimeout(ctx, s.timeout)
}

// sqliteQuerier は *sqlx.DB と *sqlx.Tx の共通部分。
type sqliteQuerier interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

type sqliteProjectRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

func (row sqliteProjectRow) toDomain() (*projectdomain.Project, error) {
	createdAt, err := time.Parse(sqliteTimeLayout, row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at of project %s: %w", row.ID, err)
	}
	updatedAt, err := time.Parse(sqliteTimeLayout, row.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at of project %s: %w", row.ID, err)
	}
	return &projectdomain.Project{
		ID:        row.ID,
		Name:      row.Name,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

type sqliteTaskRow struct {
	ID          string         `db:"id"`
	ProjectID   string         `db:"project_id"`
	Title       string         `db:"title"`
	Description sql.NullString `db:"description"`
	Status      string         `db:"status"`
	Priority    string         `db:"priority"`
	CreatedAt   string         `db:"created_at"`
	UpdatedAt   string         `db:"updated_at"`
}

func (row sqliteTaskRow) toDomain() (*taskdomain.Task, error) {
	createdAt, err := time.Parse(sqliteTimeLayout, row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at of task %s: %w", row.ID, err)
	}
	updatedAt, err := time.Parse(sqliteTimeLayout, row.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at of task %s: %w", row.ID, err)
	}
	t := &taskdomain.Task{
		ID:        row.ID,
		ProjectID: row.ProjectID,
		Title:     row.Title,
		Status:    taskdomain.TaskStatus(row.Status),
		Priority:  taskdomain.TaskPriority(row.Priority),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if row.Description.Valid {
		t.Description = row.Description.String
	}
	return t, nil
}

// --- projects ---

type sqliteProjectRepository struct {
	q       sqliteQuerier
	bounded boundFunc
}

func (r *sqliteProjectRepository) Save(ctx context.Context, p *projectdomain.Project) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	const q = `INSERT INTO projects (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, q, p.ID, p.Name, formatSQLiteTime(p.CreatedAt), formatSQLiteTime(p.UpdatedAt))
	if err != nil {
		if sqliteCode(err)&0xff == sqlite3.SQLITE_CONSTRAINT {
			return &apperror.ConflictError{Resource: apperror.ResourceProject, ID: p.ID}
		}
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

func (r *sqliteProjectRepository) Update(ctx context.Context, p *projectdomain.Project) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	const q = `UPDATE projects SET name = ?, updated_at = ? WHERE id = ?`
	res, err := r.q.ExecContext(ctx, q, p.Name, formatSQLiteTime(p.UpdatedAt), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return expectAffected(res, apperror.ProjectNotFound(p.ID))
}

func (r *sqliteProjectRepository) FindByID(ctx context.Context, id string) (*projectdomain.Project, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	const q = `SELECT id, name, created_at, updated_at FROM projects WHERE id = ?`
	var row sqliteProjectRow
	if err := sqlx.GetContext(ctx, r.q, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ProjectNotFound(id)
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return row.toDomain()
}

func (r *sqliteProjectRepository) List(ctx context.Context) ([]*projectdomain.Project, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	const q = `SELECT id, name, created_at, updated_at FROM projects ORDER BY seq ASC`
	var rows []sqliteProjectRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, q); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	out := make([]*projectdomain.Project, 0, len(rows))
	for _, row := range rows {
		p, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Delete はプロジェクトを削除する。tasks は ON DELETE CASCADE でも消える。
func (r *sqliteProjectRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	res, err := r.q.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return expectAffected(res, apperror.ProjectNotFound(id))
}

// --- tasks ---

type sqliteTaskRepository struct {
	q       sqliteQuerier
	bounded boundFunc
}

func (r *sqliteTaskRepository) Save(ctx context.Context, t *taskdomain.Task) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	const q = `
		INSERT INTO tasks (
			id, project_id, title, description, status, priority, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.q.ExecContext(ctx, q,
		t.ID, t.ProjectID, t.Title, nullIfEmpty(t.Description), string(t.Status), string(t.Priority),
		formatSQLiteTime(t.CreatedAt), formatSQLiteTime(t.UpdatedAt),
	)
	if err != nil {
		switch code := sqliteCode(err); {
		case code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return apperror.ProjectNotFound(t.ProjectID)
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return &apperror.ConflictError{Resource: apperror.ResourceTask, ID: t.ID}
		case code&0xff == sqlite3.SQLITE_CONSTRAINT:
			// 拡張コードが無い場合は親の有無で判定する
			return r.classifyConstraint(ctx, t, err)
		}
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func (r *sqliteTaskRepository) classifyConstraint(ctx context.Context, t *taskdomain.Task, cause error) error {
	var n int
	if err := sqlx.GetContext(ctx, r.q, &n, `SELECT COUNT(*) FROM projects WHERE id = ?`, t.ProjectID); err != nil {
		return fmt.Errorf("failed to insert task: %w", cause)
	}
	if n == 0 {
		return apperror.ProjectNotFound(t.ProjectID)
	}
	return &apperror.ConflictError{Resource: apperror.ResourceTask, ID: t.ID}
}

// Update は project_id 以外の可変フィールドを上書きする（後勝ち）。
func (r *sqliteTaskRepository) Update(ctx context.Context, t *taskdomain.Task) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	const q = `
		UPDATE tasks
		SET title = ?, description = ?, status = ?, priority = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := r.q.ExecContext(ctx, q,
		t.Title, nullIfEmpty(t.Description), string(t.Status), string(t.Priority), formatSQLiteTime(t.UpdatedAt), t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return expectAffected(res, apperror.TaskNotFound(t.ID))
}

func (r *sqliteTaskRepository) FindByID(ctx context.Context, id string) (*taskdomain.Task, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	const q = `
		SELECT id, project_id, title, description, status, priority, created_at, updated_at
		FROM tasks WHERE id = ?
	`
	var row sqliteTaskRow
	if err := sqlx.GetContext(ctx, r.q, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.TaskNotFound(id)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return row.toDomain()
}

func (r *sqliteTaskRepository) ListByProject(ctx context.Context, projectID string, status *taskdomain.TaskStatus) ([]*taskdomain.Task, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	q := `
		SELECT id, project_id, title, description, status, priority, created_at, updated_at
		FROM tasks WHERE project_id = ?`
	args := []interface{}{projectID}
	if status != nil {
		q += ` AND status = ?`
		args = append(args, string(*status))
	}
	q += ` ORDER BY seq ASC`

	var rows []sqliteTaskRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	out := make([]*taskdomain.Task, 0, len(rows))
	for _, row := range rows {
		t, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *sqliteTaskRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	res, err := r.q.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return expectAffected(res, apperror.TaskNotFound(id))
}

func (r *sqliteTaskRepository) DeleteByProject(ctx context.Context, projectID string) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	if _, err := r.q.ExecContext(ctx, `DELETE FROM tasks WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("failed to delete tasks of project: %w", err)
	}
	return nil
}

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

// sqliteCode は拡張エラーコードを返す。SQLite 由来でなければ 0。
func sqliteCode(err error) int {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code()
	}
	return 0
}
