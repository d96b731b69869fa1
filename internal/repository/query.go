package repository

import (
	"context"
	"strings"
)

// like wraps s for a substring LIKE match, escaping wildcards.
func like(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// paginate appends LIMIT/OFFSET when p selects a window.
func paginate(q string, args []any, p Page) (string, []any) {
	if p.PerPage < 1 {
		return q, args
	}
	out := append(append([]any{}, args...), p.PerPage, p.Offset())
	return q + " LIMIT ? OFFSET ?", out
}

func count(ctx context.Context, db DBTX, q string, args ...any) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func exists(ctx context.Context, db DBTX, q string, args ...any) (bool, error) {
	n, err := count(ctx, db, q, args...)
	return n > 0, err
}

// placeholders returns "?,?,...,?" with n marks.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func idArgs(ids []uint64) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
