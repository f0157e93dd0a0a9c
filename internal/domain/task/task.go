package task

import (
	"strings"
	"time"

	"smart-task-tracker/internal/domain/apperror"
)

// TaskStatus はタスクの状態を表す型。
// 値はそのままワイヤ上の文字列になる（"In-Progress" のハイフンは互換性のため必須）。
type TaskStatus string

const (
	StatusTodo       TaskStatus = "Todo"
	StatusInProgress TaskStatus = "In-Progress"
	StatusDone       TaskStatus = "Done"
)

// TaskPriority はタスクの優先度を表す型。
type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Med"
	PriorityHigh   TaskPriority = "High"
)

const (
	DefaultStatus   = StatusTodo
	DefaultPriority = PriorityMedium
)

// Statuses は列挙順の status 一覧を返す。
func Statuses() []TaskStatus {
	return []TaskStatus{StatusTodo, StatusInProgress, StatusDone}
}

// Priorities は低い順の priority 一覧を返す。
func Priorities() []TaskPriority {
	return []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh}
}

// Task はタスクのドメインモデル。ProjectID は生成後に変更しない。
type Task struct {
	ID          string
	ProjectID   string
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ParseStatus はワイヤ上の文字列を TaskStatus に変換する。大文字小文字も厳密に照合する。
func ParseStatus(s string) (TaskStatus, error) {
	st := TaskStatus(s)
	if !isValidStatus(st) {
		return "", apperror.NewInvalidEnum("status", apperror.ErrInvalidStatus, s)
	}
	return st, nil
}

// ParsePriority はワイヤ上の文字列を TaskPriority に変換する。
func ParsePriority(s string) (TaskPriority, error) {
	p := TaskPriority(s)
	if !isValidPriority(p) {
		return "", apperror.NewInvalidEnum("priority", apperror.ErrInvalidPriority, s)
	}
	return p, nil
}

// Draft は作成前の未検証タスク入力。nil のフィールドは未指定を意味する。
type Draft struct {
	Title       string
	Description *string
	Status      *string
	Priority    *string
}

// Normalized は検証とデフォルト適用が済んだタスク入力。
type Normalized struct {
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
}

// Validate は Draft を検証し、未指定の status/priority に Todo/Med を補う。
func Validate(d Draft) (Normalized, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return Normalized{}, apperror.NewRequired("title", apperror.ErrEmptyTitle)
	}

	n := Normalized{
		Title:    title,
		Status:   DefaultStatus,
		Priority: DefaultPriority,
	}

	if d.Description != nil {
		n.Description = *d.Description
	}

	if d.Status != nil {
		st, err := ParseStatus(*d.Status)
		if err != nil {
			return Normalized{}, err
		}
		n.Status = st
	}

	if d.Priority != nil {
		p, err := ParsePriority(*d.Priority)
		if err != nil {
			return Normalized{}, err
		}
		n.Priority = p
	}

	return n, nil
}

// NewTask は新しいタスクを生成する。
func NewTask(id, projectID string, d Draft, now time.Time) (*Task, error) {
	n, err := Validate(d)
	if err != nil {
		return nil, err
	}

	return &Task{
		ID:          id,
		ProjectID:   projectID,
		Title:       n.Title,
		Description: n.Description,
		Status:      n.Status,
		Priority:    n.Priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ChangeStatus は status を変更する。遷移の制約はなく、Done -> Todo の再オープンも可能。
func (t *Task) ChangeStatus(status TaskStatus, now time.Time) error {
	if !isValidStatus(status) {
		return apperror.NewInvalidEnum("status", apperror.ErrInvalidStatus, string(status))
	}
	t.Status = status
	t.UpdatedAt = now
	return nil
}

func isValidStatus(s TaskStatus) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

func isValidPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}
