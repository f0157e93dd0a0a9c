// Package intake は Smart Intake の分類ロジックを提供する。
//
// 自由記述のテキストからタスクのタイトルと優先度を推定する。
// 学習済みモデルではなく決定的なヒューリスティックで、I/O も内部状態も持たない。
// 同じ入力には常に同じ結果を返し、並行に呼び出してよい。
package intake

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"smart-task-tracker/internal/domain/apperror"
	"smart-task-tracker/internal/domain/task"
)

// MaxTitleLength はタイトルの最大長（rune 数、省略記号を含む）。
const MaxTitleLength = 80

// Ellipsis は切り詰めたタイトルの末尾に付ける記号。
const Ellipsis = "…"

// Suggestion は分類結果。
type Suggestion struct {
	Title    string
	Priority task.TaskPriority
	// Truncated はタイトルが MaxTitleLength に収まるよう切り詰められたことを示す。
	Truncated bool
}

var highMarkers = compileMarkers(
	"urgent", "critical", "asap", "production", "blocker", "outage",
	"emergency", "immediately", "p0", "sev1", "security",
	"high priority", "top priority",
)

var lowMarkers = compileMarkers(
	"someday", "minor", "nice to have", "low priority", "whenever",
	"eventually", "trivial", "cosmetic",
)

// Classify は input からタイトルと優先度を推定する。
// trim 後に空の場合は ErrEmptyInput を原因とする ValidationError を返す。
func Classify(input string) (Suggestion, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Suggestion{}, apperror.NewRequired("input", apperror.ErrEmptyInput)
	}

	title, truncated := ExtractTitle(trimmed)
	return Suggestion{
		Title:     title,
		Priority:  InferPriority(trimmed),
		Truncated: truncated,
	}, nil
}

// InferPriority は緊急度を表す語から優先度を決める。
// High と Low の両方の語が含まれる場合は High を返す。
func InferPriority(text string) task.TaskPriority {
	words := tokenize(text)
	switch {
	case matchesAny(words, highMarkers):
		return task.PriorityHigh
	case matchesAny(words, lowMarkers):
		return task.PriorityLow
	default:
		return task.PriorityMedium
	}
}

// ExtractTitle は最初の文をタイトルとして取り出し、MaxTitleLength に収める。
// 最初の文が空か句読点だけ（"..." で始まる入力など）の場合は入力全体の先頭部分を使う。
func ExtractTitle(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)

	title := collapseSpaces(firstSentence(trimmed))
	if !hasWordRune(title) {
		title = collapseSpaces(trimmed)
	}

	return truncateAtWord(title, MaxTitleLength)
}

// firstSentence は最初の文末までを返す。
// 改行は常に文末。'.', '!', '?' は直後が空白か入力末尾の場合だけ文末とみなす（"v1.2" は分割しない）。
// "e.g." や "i.e." のように 文字.文字. で終わる略語の '.' は文末にしない。
func firstSentence(s string) string {
	for i, r := range s {
		switch r {
		case '\n', '\r':
			return s[:i]
		case '.', '!', '?':
			if r == '.' && endsWithAbbreviation(s[:i]) {
				continue
			}
			next := i + utf8.RuneLen(r)
			if next >= len(s) {
				return s[:i]
			}
			nr, _ := utf8.DecodeRuneInString(s[next:])
			if unicode.IsSpace(nr) {
				return s[:i]
			}
		}
	}
	return s
}

// endsWithAbbreviation は s が "e.g" のように 文字.文字 で終わるかを返す。
func endsWithAbbreviation(s string) bool {
	last, n := utf8.DecodeLastRuneInString(s)
	if !unicode.IsLetter(last) {
		return false
	}
	s = s[:len(s)-n]
	dot, n := utf8.DecodeLastRuneInString(s)
	if dot != '.' {
		return false
	}
	prev, _ := utf8.DecodeLastRuneInString(s[:len(s)-n])
	return unicode.IsLetter(prev)
}

// truncateAtWord は s を limit rune 以内に収める。
// 収まらない場合は単語境界で切り、Ellipsis を付けて true を返す。
// 境界が見つからない 1 語だけの長い入力は rune 単位で切る。
func truncateAtWord(s string, limit int) (string, bool) {
	runes := []rune(s)
	if len(runes) <= limit {
		return s, false
	}

	budget := limit - utf8.RuneCountInString(Ellipsis)
	cut := budget
	if !unicode.IsSpace(runes[budget]) {
		for i := budget - 1; i > 0; i-- {
			if unicode.IsSpace(runes[i]) {
				cut = i
				break
			}
		}
	}

	head := strings.TrimRightFunc(string(runes[:cut]), func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == ';' || r == ':'
	})
	if head == "" {
		head = string(runes[:budget])
	}
	return head + Ellipsis, true
}

func hasWordRune(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// tokenize は小文字化した英数字の語に分割する。
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func compileMarkers(phrases ...string) [][]string {
	out := make([][]string, 0, len(phrases))
	for _, p := range phrases {
		out = append(out, tokenize(p))
	}
	return out
}

func matchesAny(words []string, markers [][]string) bool {
	for _, m := range markers {
		if containsPhrase(words, m) {
			return true
		}
	}
	return false
}

// containsPhrase は phrase が words の連続部分列として現れるかを返す。
func containsPhrase(words, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(words) {
		return false
	}
outer:
	for i := 0; i+len(phrase) <= len(words); i++ {
		for j, p := range phrase {
			if words[i+j] != p {
				continue outer
			}
		}
		return true
	}
	return false
}
