// Package dashboard computes the role-scoped task and staff counts shown on
// the landing page.
package dashboard

import (
	"strconv"
	"time"

	"github.com/officehub/officehub/internal/roles"
	"github.com/officehub/officehub/internal/shared"
)

// DefaultWindowDays is the trailing window used when none is requested.
const DefaultWindowDays = 7

// MaxWindowDays bounds the trailing window.
const MaxWindowDays = 3650

// Priority tiers. The high tier folds critical into high.
var (
	highTier   = []string{"high", "critical"}
	mediumTier = []string{"medium"}
	lowTier    = []string{"low"}
)

// Query selects the scope and window of a summary.
type Query struct {
	Role       roles.Role
	SubjectID  *int64
	WindowDays *int
}

// Summary is the merged result of one aggregation.
type Summary struct {
	TasksInWindow     int64             `json:"tasksInWindow"`
	ActiveStaffCount  int64             `json:"activeStaffCount"`
	PendingByPriority PendingByPriority `json:"pendingByPriority"`
	WindowDays        int               `json:"windowDays"`
}

// PendingByPriority partitions pending tasks by tier.
type PendingByPriority struct {
	High   int64 `json:"high"`
	Medium int64 `json:"medium"`
	Low    int64 `json:"low"`
	Total  int64 `json:"total"`
}

type resolvedQuery struct {
	assignee *int64
	days     int
}

func (q Query) resolve() (resolvedQuery, error) {
	days := DefaultWindowDays
	if q.WindowDays != nil {
		days = *q.WindowDays
	}
	if days < 0 || days > MaxWindowDays {
		return resolvedQuery{}, shared.Invalid("days must be between 0 and %d", MaxWindowDays)
	}
	if q.Role.IsElevated() {
		return resolvedQuery{days: days}, nil
	}
	if q.SubjectID == nil {
		return resolvedQuery{}, shared.Invalid("userId is required for staff scope")
	}
	id := *q.SubjectID
	return resolvedQuery{assignee: &id, days: days}, nil
}

func (r resolvedQuery) window(now time.Time) (time.Time, time.Time) {
	return now.Add(-time.Duration(r.days) * 24 * time.Hour), now
}

func (r resolvedQuery) cacheParts() []string {
	scope := "all"
	if r.assignee != nil {
		scope = "user-" + strconv.FormatInt(*r.assignee, 10)
	}
	return []string{"dashboard", "summary", scope, strconv.Itoa(r.days)}
}
