package http

import (
	"errors"
	"strings"

	"smart-task-tracker/internal/domain/apperror"
	taskdomain "smart-task-tracker/internal/domain/task"
)

// 入力の場所
const (
	locationBody  = "body"
	locationQuery = "query"
)

// ValidationIssue は 400 レスポンスの issues の 1 要素。
type ValidationIssue struct {
	Location      string  `json:"location"`                // "query" | "body"
	Field         string  `json:"field"`                   // 例: title, status, name
	Code          string  `json:"code"`                    // 例: REQUIRED, INVALID_ENUM
	Message       string  `json:"message"`                 // 利用者が直すべき内容がわかる文言
	RejectedValue *string `json:"rejectedValue,omitempty"` // 出せる場合のみ
}

// toValidationIssue は domain の ValidationError を ValidationIssue に変換する。
// errors.As で判定し、文字列判定は行わない。
func toValidationIssue(location string, err error) (ValidationIssue, bool) {
	var ve *apperror.ValidationError
	if !errors.As(err, &ve) {
		return ValidationIssue{}, false
	}
	return ValidationIssue{
		Location:      location,
		Field:         ve.Field,
		Code:          ve.Code,
		Message:       messageFor(ve.Field, ve.Code),
		RejectedValue: ve.RejectedValue,
	}, true
}

// messageFor は field と code の組み合わせから固定メッセージを返す。
func messageFor(field, code string) string {
	switch field {
	case "name":
		if code == apperror.CodeRequired {
			return "name は空白以外の文字を含めてください。"
		}
	case "title":
		if code == apperror.CodeRequired {
			return "title は空白以外の文字を含めてください。"
		}
	case "status":
		if code == apperror.CodeInvalidEnum {
			return "status は " + quoteList(taskdomain.Statuses()) + " のいずれかを指定してください。"
		}
	case "priority":
		if code == apperror.CodeInvalidEnum {
			return "priority は " + quoteList(taskdomain.Priorities()) + " のいずれかを指定してください。"
		}
	case "input":
		if code == apperror.CodeRequired {
			return "input は空白以外の文字を含めてください。"
		}
	case "body":
		if code == apperror.CodeRequired {
			return "更新するフィールドを 1 つ以上指定してください。"
		}
	}

	// fallback
	return "入力内容が不正です。内容を確認してください。"
}

// quoteList は 'A','B','C' の形に並べる。
func quoteList[T ~string](values []T) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + string(v) + "'"
	}
	return strings.Join(quoted, ",")
}
