package storeinfra

import (
	"context"
	"sync"

	"smart-task-tracker/internal/domain/apperror"
	projectdomain "smart-task-tracker/internal/domain/project"
	taskdomain "smart-task-tracker/internal/domain/task"
	"smart-task-tracker/internal/usecase/repository"
)

// MemoryStore はメモリ上にプロジェクトとタスクを保持するストア。
//
// ロックの規約:
//   - mu はマップと順序スライス（構造）を守る。挿入・削除・Atomic は書き込みロック。
//   - taskEntry.mu は 1 タスクの内容を守る。status 更新は mu の読み取りロック + entry ロックで行うため、
//     別タスクへの更新は互いに待たない。
//   - Atomic の fn 実行中は mu の書き込みロックを保持するので、カスケード削除の途中状態は誰にも見えない。
type MemoryStore struct {
	mu           sync.RWMutex
	projects     map[string]*projectdomain.Project
	projectOrder []string
	tasks        map[string]*taskEntry
	taskOrder    []string
}

type taskEntry struct {
	mu   sync.Mutex
	task taskdomain.Task
}

// コンパイル時にインターフェース実装を保証する。
var _ repository.Store = (*MemoryStore)(nil)

// NewMemoryStore は空のインメモリストアを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects: make(map[string]*projectdomain.Project),
		tasks:    make(map[string]*taskEntry),
	}
}

// Projects はロックを自前で取るプロジェクトリポジトリを返す。
func (s *MemoryStore) Projects() repository.ProjectRepository {
	return &memoryProjectRepository{s: s}
}

// Tasks はロックを自前で取るタスクリポジトリを返す。
func (s *MemoryStore) Tasks() repository.TaskRepository {
	return &memoryTaskRepository{s: s}
}

// Close は何もしない。
func (s *MemoryStore) Close() error { return nil }

// Atomic は書き込みロックを保持したまま fn を実行する。
// fn がエラーを返した場合は記録した取り消し操作を逆順に適用して元に戻す。
func (s *MemoryStore) Atomic(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{}
	repos := repository.Repositories{
		Projects: &memoryProjectRepository{s: s, tx: tx},
		Tasks:    &memoryTaskRepository{s: s, tx: tx},
	}

	if err := fn(ctx, repos); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// memoryTx は Atomic 内の変更を取り消すための操作を積む。
type memoryTx struct {
	undo []func()
}

func (tx *memoryTx) record(f func()) {
	if tx != nil {
		tx.undo = append(tx.undo, f)
	}
}

func (tx *memoryTx) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

// lockRead/lockWrite は Atomic の外でだけロックを取る（Atomic 内では既に書き込みロック中）。
func (s *MemoryStore) lockRead(tx *memoryTx) func() {
	if tx != nil {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *MemoryStore) lockWrite(tx *memoryTx) func() {
	if tx != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// --- projects ---

type memoryProjectRepository struct {
	s  *MemoryStore
	tx *memoryTx
}

// Save はプロジェクトを保存する。
func (r *memoryProjectRepository) Save(_ context.Context, p *projectdomain.Project) error {
	defer r.s.lockWrite(r.tx)()

	if _, exists := r.s.projects[p.ID]; exists {
		return &apperror.ConflictError{Resource: apperror.ResourceProject, ID: p.ID}
	}

	cp := *p
	r.s.projects[p.ID] = &cp
	r.s.projectOrder = append(r.s.projectOrder, p.ID)

	r.tx.record(func() {
		delete(r.s.projects, p.ID)
		r.s.projectOrder = removeID(r.s.projectOrder, p.ID)
	})
	return nil
}

// Update は既存プロジェクトを上書き保存する。
func (r *memoryProjectRepository) Update(_ context.Context, p *projectdomain.Project) error {
	defer r.s.lockWrite(r.tx)()

	prev, ok := r.s.projects[p.ID]
	if !ok {
		return apperror.ProjectNotFound(p.ID)
	}

	cp := *p
	r.s.projects[p.ID] = &cp
	r.tx.record(func() { r.s.projects[p.ID] = prev })
	return nil
}

// FindByID は ID を指定してプロジェクトを取得する。返り値はコピー。
func (r *memoryProjectRepository) FindByID(_ context.Context, id string) (*projectdomain.Project, error) {
	defer r.s.lockRead(r.tx)()

	p, ok := r.s.projects[id]
	if !ok {
		return nil, apperror.ProjectNotFound(id)
	}
	cp := *p
	return &cp, nil
}

// List は作成順でプロジェクト一覧を返す。
func (r *memoryProjectRepository) List(_ context.Context) ([]*projectdomain.Project, error) {
	defer r.s.lockRead(r.tx)()

	out := make([]*projectdomain.Project, 0, len(r.s.projectOrder))
	for _, id := range r.s.projectOrder {
		cp := *r.s.projects[id]
		out = append(out, &cp)
	}
	return out, nil
}

// Delete はプロジェクトを削除する。配下のタスクは呼び出し側が同じ単位で削除する。
func (r *memoryProjectRepository) Delete(_ context.Context, id string) error {
	defer r.s.lockWrite(r.tx)()

	prev, ok := r.s.projects[id]
	if !ok {
		return apperror.ProjectNotFound(id)
	}

	order := append([]string(nil), r.s.projectOrder...)
	delete(r.s.projects, id)
	r.s.projectOrder = removeID(r.s.projectOrder, id)

	r.tx.record(func() {
		r.s.projects[id] = prev
		r.s.projectOrder = order
	})
	return nil
}

// --- tasks ---

type memoryTaskRepository struct {
	s  *MemoryStore
	tx *memoryTx
}

// Save はタスクを保存する。
// タスク ID をキーにして複数タスクを独立して保存できる状態にする。
func (r *memoryTaskRepository) Save(_ context.Context, t *taskdomain.Task) error {
	defer r.s.lockWrite(r.tx)()

	if _, exists := r.s.tasks[t.ID]; exists {
		return &apperror.ConflictError{Resource: apperror.ResourceTask, ID: t.ID}
	}
	// 外部キー相当の検査
	if _, ok := r.s.projects[t.ProjectID]; !ok {
		return apperror.ProjectNotFound(t.ProjectID)
	}

	r.s.tasks[t.ID] = &taskEntry{task: *t}
	r.s.taskOrder = append(r.s.taskOrder, t.ID)

	r.tx.record(func() {
		delete(r.s.tasks, t.ID)
		r.s.taskOrder = removeID(r.s.taskOrder, t.ID)
	})
	return nil
}

// Update は既存タスクを上書き保存する（後勝ち）。
// 構造は読み取りロックだけで触り、内容は entry ロックで守る。
func (r *memoryTaskRepository) Update(_ context.Context, t *taskdomain.Task) error {
	defer r.s.lockRead(r.tx)()

	e, ok := r.s.tasks[t.ID]
	if !ok {
		return apperror.TaskNotFound(t.ID)
	}

	e.mu.Lock()
	prev := e.task
	next := *t
	// project_id は不変
	next.ProjectID = prev.ProjectID
	e.task = next
	e.mu.Unlock()

	r.tx.record(func() { e.task = prev })
	return nil
}

// FindByID は ID を指定してタスクを取得する。返り値はコピー。
func (r *memoryTaskRepository) FindByID(_ context.Context, id string) (*taskdomain.Task, error) {
	defer r.s.lockRead(r.tx)()

	e, ok := r.s.tasks[id]
	if !ok {
		return nil, apperror.TaskNotFound(id)
	}
	cp := e.snapshot()
	return &cp, nil
}

// ListByProject は指定された projectID のタスク一覧を挿入順で返す。
func (r *memoryTaskRepository) ListByProject(_ context.Context, projectID string, status *taskdomain.TaskStatus) ([]*taskdomain.Task, error) {
	defer r.s.lockRead(r.tx)()

	out := make([]*taskdomain.Task, 0)
	for _, id := range r.s.taskOrder {
		cp := r.s.tasks[id].snapshot()
		if cp.ProjectID != projectID {
			continue
		}
		if status != nil && cp.Status != *status {
			continue
		}
		out = append(out, &cp)
	}
	return out, nil
}

// Delete はタスクを 1 件削除する。
func (r *memoryTaskRepository) Delete(_ context.Context, id string) error {
	defer r.s.lockWrite(r.tx)()

	e, ok := r.s.tasks[id]
	if !ok {
		return apperror.TaskNotFound(id)
	}

	order := append([]string(nil), r.s.taskOrder...)
	delete(r.s.tasks, id)
	r.s.taskOrder = removeID(r.s.taskOrder, id)

	r.tx.record(func() {
		r.s.tasks[id] = e
		r.s.taskOrder = order
	})
	return nil
}

// DeleteByProject はプロジェクト配下のタスクを全削除する。該当なしでもエラーにしない。
func (r *memoryTaskRepository) DeleteByProject(_ context.Context, projectID string) error {
	defer r.s.lockWrite(r.tx)()

	order := append([]string(nil), r.s.taskOrder...)
	removed := make(map[string]*taskEntry)
	kept := r.s.taskOrder[:0:0]

	for _, id := range r.s.taskOrder {
		e := r.s.tasks[id]
		if e.task.ProjectID == projectID {
			removed[id] = e
			delete(r.s.tasks, id)
			continue
		}
		kept = append(kept, id)
	}
	if len(removed) == 0 {
		return nil
	}
	r.s.taskOrder = kept

	r.tx.record(func() {
		for id, e := range removed {
			r.s.tasks[id] = e
		}
		r.s.taskOrder = order
	})
	return nil
}

func (e *taskEntry) snapshot() taskdomain.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.task
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
