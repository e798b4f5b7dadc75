package projects

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memRepo struct {
	boards   map[int64]*Board
	tasks    map[int64]*Task
	comments map[int64]*Comment
	nextID   int64
}

func newMemRepo() *memRepo {
	return &memRepo{
		boards:   make(map[int64]*Board),
		tasks:    make(map[int64]*Task),
		comments: make(map[int64]*Comment),
		nextID:   1,
	}
}

func (m *memRepo) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *memRepo) CreateBoard(_ context.Context, b Board) (int64, error) {
	b.ID = m.id()
	b.CreatedAt = time.Now().UTC()
	m.boards[b.ID] = &b
	return b.ID, nil
}

func (m *memRepo) GetBoard(_ context.Context, id int64) (*Board, error) {
	b, ok := m.boards[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memRepo) ListBoards(_ context.Context) ([]Board, error) {
	var out []Board
	for _, b := range m.boards {
		out = append(out, *b)
	}
	return out, nil
}

func (m *memRepo) DeleteBoard(_ context.Context, id int64) error {
	if _, ok := m.boards[id]; !ok {
		return ErrNotFound
	}
	delete(m.boards, id)
	return nil
}

func (m *memRepo) CreateTask(_ context.Context, t Task) (int64, error) {
	t.ID = m.id()
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	m.tasks[t.ID] = &t
	return t.ID, nil
}

func (m *memRepo) GetTask(_ context.Context, id int64) (*Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memRepo) ListTasks(_ context.Context, boardID int64) ([]Task, error) {
	var out []Task
	for _, t := range m.tasks {
		if t.BoardID == boardID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memRepo) UpdateTaskStatus(_ context.Context, id int64, status TaskStatus) error {
	t, ok := m.tasks[id]
	if !ok {
		return ErrNotFound
	}
	t.Status = status
	return nil
}

func (m *memRepo) DeleteTask(_ context.Context, id int64) error {
	if _, ok := m.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *memRepo) CreateComment(_ context.Context, c Comment) (int64, error) {
	c.ID = m.id()
	c.CreatedAt = time.Now().UTC()
	m.comments[c.ID] = &c
	return c.ID, nil
}

func (m *memRepo) ListComments(_ context.Context, taskID int64) ([]Comment, error) {
	var out []Comment
	for _, c := range m.comments {
		if c.TaskID == taskID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func TestBoardLanes(t *testing.T) {
	svc := NewService(newMemRepo())

	board, err := svc.CreateBoard(context.Background(), CreateBoardRequest{Name: "Launch"}, 1)
	require.NoError(t, err)

	first, err := svc.CreateTask(context.Background(), CreateTaskRequest{BoardID: board.ID, Title: "Write copy"}, 1)
	require.NoError(t, err)
	second, err := svc.CreateTask(context.Background(), CreateTaskRequest{BoardID: board.ID, Title: "Ship site"}, 1)
	require.NoError(t, err)

	require.NoError(t, svc.MoveTask(context.Background(), second.ID, StatusDoing))

	view, err := svc.BoardDetail(context.Background(), board.ID)
	require.NoError(t, err)
	require.Len(t, view.Todo, 1)
	require.Equal(t, first.ID, view.Todo[0].ID)
	require.Len(t, view.Doing, 1)
	require.Empty(t, view.Done)
}

func TestMoveTaskRejectsUnknownLane(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)

	board, err := svc.CreateBoard(context.Background(), CreateBoardRequest{Name: "Launch"}, 1)
	require.NoError(t, err)
	task, err := svc.CreateTask(context.Background(), CreateTaskRequest{BoardID: board.ID, Title: "Write copy"}, 1)
	require.NoError(t, err)

	require.ErrorIs(t, svc.MoveTask(context.Background(), task.ID, "BLOCKED"), ErrValidation)
}

func TestCreateTaskRequiresBoard(t *testing.T) {
	svc := NewService(newMemRepo())
	_, err := svc.CreateTask(context.Background(), CreateTaskRequest{BoardID: 42, Title: "Orphan"}, 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCommentThread(t *testing.T) {
	svc := NewService(newMemRepo())

	board, err := svc.CreateBoard(context.Background(), CreateBoardRequest{Name: "Launch"}, 1)
	require.NoError(t, err)
	task, err := svc.CreateTask(context.Background(), CreateTaskRequest{BoardID: board.ID, Title: "Write copy"}, 1)
	require.NoError(t, err)

	_, err = svc.Comment(context.Background(), task.ID, 2, "Draft is ready for review")
	require.NoError(t, err)
	_, err = svc.Comment(context.Background(), task.ID, 2, "")
	require.ErrorIs(t, err, ErrValidation)

	view, err := svc.TaskDetail(context.Background(), task.ID)
	require.NoError(t, err)
	require.Len(t, view.Comments, 1)
	require.Equal(t, "Draft is ready for review", view.Comments[0].Body)
}

func TestBoardValidation(t *testing.T) {
	svc := NewService(newMemRepo())
	_, err := svc.CreateBoard(context.Background(), CreateBoardRequest{}, 1)
	require.ErrorIs(t, err, ErrValidation)
}
