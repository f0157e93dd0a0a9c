package storeinfra

import (
	"embed"
	"fmt"
)

//go:embed sql/*.sql
var schemaFS embed.FS

// Schema は dialect（postgres / sqlite）ごとの DDL を返す。
// CREATE ... IF NOT EXISTS のみなので何度適用してもよい。
func Schema(dialect string) (string, error) {
	b, err := schemaFS.ReadFile(fmt.Sprintf("sql/schema.%s.sql", dialect))
	if err != nil {
		return "", fmt.Errorf("unknown schema dialect %q: %w", dialect, err)
	}
	return string(b), nil
}
