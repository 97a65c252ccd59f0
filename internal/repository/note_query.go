package repository

import (
	"fmt"
	"strings"

	"notes-app-be/internal/constant"
)

// escapeLike escapes LIKE metacharacters so a search term always matches as a
// literal substring. Backslash first, or the escapes themselves get escaped.
func escapeLike(term string) string {
	term = strings.ReplaceAll(term, `\`, `\\`)
	term = strings.ReplaceAll(term, `%`, `\%`)
	term = strings.ReplaceAll(term, `_`, `\_`)
	return term
}

// buildListQuery renders the filter into a page query and a count query
// sharing one argument list. The filter must already be normalized.
func buildListQuery(ownerId string, f ListNotesFilter) (selectSQL, countSQL string, args []any) {
	where := []string{"owner_id = $1"}
	args = []any{ownerId}

	if f.Search != "" {
		args = append(args, "%"+escapeLike(f.Search)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			`(title ILIKE $%d ESCAPE '\' OR content ILIKE $%d ESCAPE '\')`, n, n))
	}

	if f.Category != "" && f.Category != constant.CategoryAll {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}

	if f.From != nil {
		args = append(args, *f.From)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where = append(where, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	var orderBy string
	switch f.Sort {
	case constant.SortOldest:
		orderBy = "created_at ASC"
	case constant.SortCategory:
		orderBy = "category ASC, created_at DESC"
	default:
		orderBy = "created_at DESC"
	}

	whereSQL := strings.Join(where, " AND ")

	selectSQL = fmt.Sprintf(
		"SELECT %s FROM note WHERE %s ORDER BY %s LIMIT %d OFFSET %d",
		noteColumns, whereSQL, orderBy, f.Limit, f.Offset(),
	)
	countSQL = fmt.Sprintf("SELECT COUNT(*) FROM note WHERE %s", whereSQL)

	return selectSQL, countSQL, args
}
