package httpjson

import "encoding/json"

// Nullable は JSON の「未指定」「null」「値あり」を区別して受け取る。
type Nullable[T any] struct {
	Set   bool // JSON にフィールドが存在したか（未指定=false）
	Valid bool // null でないか（値あり=true、null=false）
	Val   T
}

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Valid = false
		var zero T
		n.Val = zero
		return nil
	}
	n.Valid = true
	return json.Unmarshal(b, &n.Val)
}

// Ptr は値ありのときだけ値へのポインタを返す。未指定と null は nil。
func (n Nullable[T]) Ptr() *T {
	if !n.Set || !n.Valid {
		return nil
	}
	v := n.Val
	return &v
}

// IsNull は null が明示されたかを返す。
func (n Nullable[T]) IsNull() bool {
	return n.Set && !n.Valid
}
