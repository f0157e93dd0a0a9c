package http

import (
	"fmt"
	"testing"

	"smart-task-tracker/internal/domain/apperror"
)

func TestToValidationIssue_EnumMessagesListAllowedValues(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "status",
			err:  apperror.NewInvalidEnum("status", apperror.ErrInvalidStatus, "todo"),
			want: "status は 'Todo','In-Progress','Done' のいずれかを指定してください。",
		},
		{
			name: "priority",
			err:  apperror.NewInvalidEnum("priority", apperror.ErrInvalidPriority, "Urgent"),
			want: "priority は 'Low','Med','High' のいずれかを指定してください。",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issue, ok := toValidationIssue(locationBody, fmt.Errorf("wrapped: %w", tt.err))
			if !ok {
				t.Fatal("expected ValidationError to be recognised")
			}
			if issue.Message != tt.want {
				t.Errorf("message = %q, want %q", issue.Message, tt.want)
			}
			if issue.Code != apperror.CodeInvalidEnum || issue.Location != locationBody {
				t.Errorf("unexpected issue: %+v", issue)
			}
		})
	}
}

func TestToValidationIssue_NotValidation(t *testing.T) {
	if _, ok := toValidationIssue(locationQuery, apperror.ProjectNotFound("p")); ok {
		t.Fatal("expected NotFoundError not to map to an issue")
	}
}
