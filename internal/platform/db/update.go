package db

import (
	"fmt"
	"strings"
)

// Assignments collects column updates for a partial UPDATE statement.
type Assignments struct {
	cols []string
	args []any
}

// Set queues col = value.
func (a *Assignments) Set(col string, value any) {
	a.cols = append(a.cols, col)
	a.args = append(a.args, value)
}

// Len reports the number of queued columns.
func (a *Assignments) Len() int { return len(a.cols) }

// Update renders "UPDATE table SET ... WHERE id = $n RETURNING returning".
// updated_at is always touched.
func (a *Assignments) Update(table string, id int64, returning string) (string, []any) {
	var b strings.Builder
	fmt.Fprintf(&b, "UPDATE %s SET updated_at = NOW()", table)
	args := make([]any, 0, len(a.args)+1)
	for i, col := range a.cols {
		fmt.Fprintf(&b, ", %s = $%d", col, i+1)
		args = append(args, a.args[i])
	}
	fmt.Fprintf(&b, " WHERE id = $%d", len(a.cols)+1)
	args = append(args, id)
	if returning != "" {
		b.WriteString(" RETURNING ")
		b.WriteString(returning)
	}
	return b.String(), args
}
