package intake_test

import (
	"context"
	"errors"
	"testing"

	"smart-task-tracker/internal/domain/apperror"
	domain "smart-task-tracker/internal/domain/intake"
	"smart-task-tracker/internal/domain/task"
	usecase "smart-task-tracker/internal/usecase/intake"
)

func TestSmartIntake_DefaultClassifier(t *testing.T) {
	uc := &usecase.SmartIntakeUsecase{}

	got, err := uc.Execute(context.Background(), "URGENT: fix the production outage now")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Priority != task.PriorityHigh {
		t.Errorf("expected High, got %s", got.Priority)
	}
	if got.Title != "URGENT: fix the production outage now" {
		t.Errorf("unexpected title: %q", got.Title)
	}
}

func TestSmartIntake_EmptyInput(t *testing.T) {
	uc := &usecase.SmartIntakeUsecase{}

	_, err := uc.Execute(context.Background(), "  ")
	if !errors.Is(err, apperror.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestSmartIntake_CustomClassifier(t *testing.T) {
	called := 0
	uc := &usecase.SmartIntakeUsecase{
		Classify: func(input string) (domain.Suggestion, error) {
			called++
			return domain.Suggestion{Title: "stub", Priority: task.PriorityLow}, nil
		},
	}

	got, err := uc.Execute(context.Background(), "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called != 1 || got.Title != "stub" {
		t.Errorf("custom classifier not used: called=%d got=%+v", called, got)
	}
}

func TestSmartIntake_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	uc := &usecase.SmartIntakeUsecase{}
	if _, err := uc.Execute(ctx, "hello"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
