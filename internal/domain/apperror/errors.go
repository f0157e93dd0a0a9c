package apperror

import (
	"errors"
	"fmt"
)

// --- Sentinel Errors ---
// これらは errors.Is で判定可能。HTTP 層でステータスコードと ValidationIssue に変換される。

// 入力検証エラー
var (
	// ErrEmptyName はプロジェクト名が空（trim 後）の場合のエラー。
	ErrEmptyName = errors.New("project name must not be empty")

	// ErrEmptyTitle はタスクタイトルが空（trim 後）の場合のエラー。
	ErrEmptyTitle = errors.New("task title must not be empty")

	// ErrInvalidStatus は status が列挙値以外の場合のエラー。
	ErrInvalidStatus = errors.New("invalid task status")

	// ErrInvalidPriority は priority が列挙値以外の場合のエラー。
	ErrInvalidPriority = errors.New("invalid task priority")

	// ErrEmptyInput は Smart Intake の入力が空（trim 後）の場合のエラー。
	ErrEmptyInput = errors.New("intake input must not be empty")

	// ErrEmptyPatch は PATCH で更新対象が一つも指定されなかった場合のエラー。
	ErrEmptyPatch = errors.New("at least one field must be provided")
)

// 参照・競合エラー
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// NotFoundError は指定 ID のリソースが存在しないことを表す typed error。
type NotFoundError struct {
	Resource string // project, task
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// Unwrap は ErrNotFound を返すので errors.Is(err, ErrNotFound) が成り立つ。
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ProjectNotFound はプロジェクト未存在エラーを生成する。
func ProjectNotFound(id string) error {
	return &NotFoundError{Resource: ResourceProject, ID: id}
}

// TaskNotFound はタスク未存在エラーを生成する。
func TaskNotFound(id string) error {
	return &NotFoundError{Resource: ResourceTask, ID: id}
}

const (
	ResourceProject = "project"
	ResourceTask    = "task"
)

// IsNotFound は err が指定リソースの NotFoundError かどうかを返す。
func IsNotFound(err error, resource string) bool {
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		return false
	}
	return nf.Resource == resource
}

// ConflictError は楽観的排他制御用に予約されている。現在の操作では発生しない。
type ConflictError struct {
	Resource string
	ID       string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Resource, e.ID)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}
