package project

import (
	"strings"
	"time"

	"smart-task-tracker/internal/domain/apperror"
)

// Project はタスクをまとめるプロジェクトのドメインモデル。
// タスクとは 1 対多で、削除時は配下のタスクもすべて削除される。
type Project struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateName はプロジェクト名を trim して検証する。
// trim 後に空なら REQUIRED の ValidationError を返す。
func ValidateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", apperror.NewRequired("name", apperror.ErrEmptyName)
	}
	return trimmed, nil
}

// NewProject は新しいプロジェクトを生成する。
// Name が空の場合はエラーを返す。
func NewProject(id, name string, now time.Time) (*Project, error) {
	normalized, err := ValidateName(name)
	if err != nil {
		return nil, err
	}

	return &Project{
		ID:        id,
		Name:      normalized,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Rename はプロジェクト名を変更する。ID と CreatedAt は変わらない。
func (p *Project) Rename(name string, now time.Time) error {
	normalized, err := ValidateName(name)
	if err != nil {
		return err
	}
	p.Name = normalized
	p.UpdatedAt = now
	return nil
}
