package repository

import "github.com/google/uuid"

// IDGenerator は新しいエンティティ ID を払い出す。
type IDGenerator func() string

// NewUUIDv7 は時刻順に並ぶ UUIDv7 を文字列で返す。
// 同一プロセス内では単調増加するので、ID の辞書順が作成順と一致する。
func NewUUIDv7() string {
	id, err := uuid.NewV7()
	if err != nil {
		// 乱数源が壊れている場合のみ。v4 でも一意性は保てる。
		return uuid.NewString()
	}
	return id.String()
}
