package projects

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// CreateBoardRequest carries a new board from the form layer.
type CreateBoardRequest struct {
	Name        string `validate:"required,max=120"`
	Description string `validate:"max=500"`
}

// CreateTaskRequest carries a new task from the form layer.
type CreateTaskRequest struct {
	BoardID int64  `validate:"required,gt=0"`
	Title   string `validate:"required,max=200"`
	Details string `validate:"max=2000"`
}

// BoardView is a board with its tasks grouped into lanes.
type BoardView struct {
	Board Board
	Todo  []Task
	Doing []Task
	Done  []Task
}

// TaskView is a task with its comment thread.
type TaskView struct {
	Task     Task
	Comments []Comment
}

// Service implements board, task and comment operations.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// Boards lists all boards, newest first.
func (s *Service) Boards(ctx context.Context) ([]Board, error) {
	return s.repo.ListBoards(ctx)
}

// CreateBoard validates and stores a new board.
func (s *Service) CreateBoard(ctx context.Context, req CreateBoardRequest, createdBy int64) (*Board, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	board := Board{Name: req.Name, Description: req.Description, CreatedBy: createdBy}
	id, err := s.repo.CreateBoard(ctx, board)
	if err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}
	board.ID = id
	return &board, nil
}

// DeleteBoard removes a board with everything on it.
func (s *Service) DeleteBoard(ctx context.Context, id int64) error {
	return s.repo.DeleteBoard(ctx, id)
}

// BoardDetail loads a board and groups its tasks into lanes.
func (s *Service) BoardDetail(ctx context.Context, id int64) (*BoardView, error) {
	board, err := s.repo.GetBoard(ctx, id)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListTasks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	view := BoardView{Board: *board}
	for _, t := range tasks {
		switch t.Status {
		case StatusDoing:
			view.Doing = append(view.Doing, t)
		case StatusDone:
			view.Done = append(view.Done, t)
		default:
			view.Todo = append(view.Todo, t)
		}
	}
	return &view, nil
}

// CreateTask validates and stores a new task in the TODO lane.
func (s *Service) CreateTask(ctx context.Context, req CreateTaskRequest, createdBy int64) (*Task, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if _, err := s.repo.GetBoard(ctx, req.BoardID); err != nil {
		return nil, err
	}
	task := Task{BoardID: req.BoardID, Title: req.Title, Details: req.Details, Status: StatusTodo, CreatedBy: createdBy}
	id, err := s.repo.CreateTask(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	task.ID = id
	return &task, nil
}

// MoveTask switches a task's lane.
func (s *Service) MoveTask(ctx context.Context, id int64, status TaskStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.repo.UpdateTaskStatus(ctx, id, status)
}

// DeleteTask removes a task and its thread.
func (s *Service) DeleteTask(ctx context.Context, id int64) error {
	return s.repo.DeleteTask(ctx, id)
}

// TaskDetail loads a task with its comment thread.
func (s *Service) TaskDetail(ctx context.Context, id int64) (*TaskView, error) {
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.repo.ListComments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return &TaskView{Task: *task, Comments: comments}, nil
}

// Comment appends a message to a task's thread.
func (s *Service) Comment(ctx context.Context, taskID, authorID int64, body string) (*Comment, error) {
	if body == "" || len(body) > 2000 {
		return nil, fmt.Errorf("%w: comment body must be 1-2000 characters", ErrValidation)
	}
	if _, err := s.repo.GetTask(ctx, taskID); err != nil {
		return nil, err
	}
	comment := Comment{TaskID: taskID, AuthorID: authorID, Body: body}
	id, err := s.repo.CreateComment(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	comment.ID = id
	return &comment, nil
}
