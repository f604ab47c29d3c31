package tasks

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/officehub/officehub/internal/roles"
	"github.com/officehub/officehub/internal/shared"
)

type memoryRepo struct {
	tasks  map[int64]*Task
	nextID int64
	err    error
}

func newMemoryRepo(seed ...Task) *memoryRepo {
	m := &memoryRepo{tasks: map[int64]*Task{}, nextID: 1}
	for i := range seed {
		t := seed[i]
		m.tasks[t.ID] = &t
		if t.ID >= m.nextID {
			m.nextID = t.ID + 1
		}
	}
	return m
}

func (m *memoryRepo) List(_ context.Context, f ListFilter) ([]Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []Task{}
	for _, t := range m.tasks {
		if f.Participant != nil && !t.Involves(*f.Participant) {
			continue
		}
		if f.AssigneeID != nil && t.AssignedToID != *f.AssigneeID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	t, ok := m.tasks[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memoryRepo) Create(_ context.Context, n NewTask) (*Task, error) {
	t := Task{ID: m.nextID, Title: n.Title, Description: n.Description, AssignedToID: n.AssignedToID, AssignedByID: n.AssignedByID, Priority: n.Priority, DueDate: n.DueDate, Status: StatusPending}
	m.nextID++
	m.tasks[t.ID] = &t
	cp := t
	return &cp, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, updates map[string]any) (*Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	for col, v := range updates {
		switch col {
		case "status":
			t.Status = Status(v.(string))
		case "completion_level":
			t.CompletionLevel = v.(int)
		case "notes":
			s := v.(string)
			t.Notes = &s
		case "assigned_to_id":
			t.AssignedToID = v.(int64)
		}
	}
	cp := *t
	return &cp, nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.tasks[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return nil
}

var (
	admin = shared.Principal{UserID: 1, Role: roles.Admin}
	sam   = shared.Principal{UserID: 3, Role: roles.Staff}
)

func seeded() *memoryRepo {
	return newMemoryRepo(
		Task{ID: 1, Title: "File claims", AssignedToID: 3, AssignedByID: 1, Status: StatusPending, Priority: PriorityHigh},
		Task{ID: 2, Title: "Call client", AssignedToID: 4, AssignedByID: 1, Status: StatusPending, Priority: PriorityLow},
		Task{ID: 3, Title: "Review renewals", AssignedToID: 4, AssignedByID: 3, Status: StatusInProgress, Priority: PriorityMedium},
	)
}

func TestListScopesStaff(t *testing.T) {
	svc := NewService(seeded(), nil, nil)

	all, err := svc.List(context.Background(), admin, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	own, err := svc.List(context.Background(), sam, ListFilter{})
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, int64(1), own[0].ID)
	assert.Equal(t, int64(3), own[1].ID)
}

func TestCreateDefaults(t *testing.T) {
	inv := &countingInvalidator{}
	svc := NewService(newMemoryRepo(), inv, nil)
	due := "2024-04-01"

	task, err := svc.Create(context.Background(), sam, CreateTaskRequest{Title: "  Prepare quote ", AssignedToID: 4, DueDate: &due})
	require.NoError(t, err)
	assert.Equal(t, "Prepare quote", task.Title)
	assert.Equal(t, PriorityMedium, task.Priority)
	assert.Equal(t, StatusPending, task.Status)
	assert.Equal(t, int64(3), task.AssignedByID)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2024-04-01", task.DueDate.Format(DateLayout))
	assert.Equal(t, 1, inv.calls)

	bad := "01/04/2024"
	_, err = svc.Create(context.Background(), sam, CreateTaskRequest{Title: "x", AssignedToID: 4, DueDate: &bad})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestStaffMutatesOnlyOwnTasks(t *testing.T) {
	inv := &countingInvalidator{}
	svc := NewService(seeded(), inv, nil)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, sam, 2, StatusCompleted)
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, sam, 2), shared.ErrForbidden)
	assert.Zero(t, inv.calls)

	task, err := svc.UpdateStatus(ctx, sam, 3, StatusReassigned)
	require.NoError(t, err)
	assert.Equal(t, StatusReassigned, task.Status)

	task, err = svc.UpdateStatus(ctx, admin, 2, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, task.Status)
	assert.Equal(t, 2, inv.calls)

	_, err = svc.UpdateStatus(ctx, admin, 42, StatusCompleted)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateProgress(t *testing.T) {
	svc := NewService(seeded(), nil, nil)
	ctx := context.Background()
	notes := "halfway"

	task, err := svc.UpdateProgress(ctx, sam, 1, 50, &notes)
	require.NoError(t, err)
	assert.Equal(t, 50, task.CompletionLevel)
	assert.Equal(t, StatusInProgress, task.Status)
	require.NotNil(t, task.Notes)
	assert.Equal(t, "halfway", *task.Notes)

	task, err = svc.UpdateProgress(ctx, sam, 1, 100, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, task.Status)

	_, err = svc.UpdateProgress(ctx, sam, 1, 101, nil)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestReassign(t *testing.T) {
	svc := NewService(seeded(), nil, nil)
	task, err := svc.Reassign(context.Background(), admin, 1, 4, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), task.AssignedToID)
	assert.Equal(t, StatusReassigned, task.Status)

	_, err = svc.Reassign(context.Background(), admin, 1, 0, nil)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestStoreErrorsPropagate(t *testing.T) {
	repo := seeded()
	repo.err = errors.Join(shared.ErrStoreUnavailable, errors.New("dial tcp"))
	svc := NewService(repo, nil, nil)
	_, err := svc.List(context.Background(), admin, ListFilter{})
	assert.ErrorIs(t, err, shared.ErrStoreUnavailable)
}
