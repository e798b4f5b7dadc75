package projects

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atrium-hq/atrium/internal/shared"
	"github.com/atrium-hq/atrium/internal/view"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
}

func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf}
}

// MountRoutes attaches the project pages.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Boards)
	r.Post("/", h.CreateBoard)
	r.Get("/{boardID}", h.Board)
	r.Post("/{boardID}/delete", h.DeleteBoard)
	r.Post("/{boardID}/tasks", h.CreateTask)
	r.Get("/tasks/{taskID}", h.Task)
	r.Post("/tasks/{taskID}/move", h.MoveTask)
	r.Post("/tasks/{taskID}/delete", h.DeleteTask)
	r.Post("/tasks/{taskID}/comments", h.Comment)
}

// Boards lists all boards with an inline creation form.
func (h *Handler) Boards(w http.ResponseWriter, r *http.Request) {
	boards, err := h.service.Boards(r.Context())
	if err != nil {
		h.logger.Error("list boards", slog.Any("error", err))
		http.Error(w, "Failed to load boards", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/projects/boards.html", "Projects", map[string]any{
		"Boards": boards,
	})
}

// CreateBoard stores a new board from the posted form.
func (h *Handler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	req := CreateBoardRequest{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
	}
	board, err := h.service.CreateBoard(r.Context(), req, currentUserID(r))
	if err != nil {
		if errors.Is(err, ErrValidation) {
			h.flashError(r, err.Error())
			http.Redirect(w, r, "/projects", http.StatusSeeOther)
			return
		}
		h.logger.Error("create board", slog.Any("error", err))
		http.Error(w, "Failed to create board", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/projects/"+strconv.FormatInt(board.ID, 10), http.StatusSeeOther)
}

// Board renders one board's lanes.
func (h *Handler) Board(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "boardID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid board ID", http.StatusBadRequest)
		return
	}
	detail, err := h.service.BoardDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Board not found", http.StatusNotFound)
			return
		}
		h.logger.Error("board detail", slog.Any("error", err), slog.Int64("id", id))
		http.Error(w, "Failed to load board", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/projects/board.html", detail.Board.Name, map[string]any{
		"View": detail,
	})
}

// DeleteBoard removes a board with everything on it.
func (h *Handler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "boardID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid board ID", http.StatusBadRequest)
		return
	}
	if err := h.service.DeleteBoard(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Board not found", http.StatusNotFound)
			return
		}
		h.logger.Error("delete board", slog.Any("error", err), slog.Int64("id", id))
		http.Error(w, "Failed to delete board", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/projects", http.StatusSeeOther)
}

// CreateTask adds a task to the board's TODO lane.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	boardID, err := strconv.ParseInt(chi.URLParam(r, "boardID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid board ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	req := CreateTaskRequest{
		BoardID: boardID,
		Title:   r.PostFormValue("title"),
		Details: r.PostFormValue("details"),
	}
	if _, err := h.service.CreateTask(r.Context(), req, currentUserID(r)); err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			h.flashError(r, err.Error())
		case errors.Is(err, ErrNotFound):
			http.Error(w, "Board not found", http.StatusNotFound)
			return
		default:
			h.logger.Error("create task", slog.Any("error", err))
			http.Error(w, "Failed to create task", http.StatusInternalServerError)
			return
		}
	}
	http.Redirect(w, r, "/projects/"+strconv.FormatInt(boardID, 10), http.StatusSeeOther)
}

// Task renders a task with its comment thread.
func (h *Handler) Task(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}
	detail, err := h.service.TaskDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Task not found", http.StatusNotFound)
			return
		}
		h.logger.Error("task detail", slog.Any("error", err), slog.Int64("id", id))
		http.Error(w, "Failed to load task", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/projects/task.html", detail.Task.Title, map[string]any{
		"View":     detail,
		"Statuses": []TaskStatus{StatusTodo, StatusDoing, StatusDone},
	})
}

// MoveTask switches a task's lane from the posted form.
func (h *Handler) MoveTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	if err := h.service.MoveTask(r.Context(), id, TaskStatus(r.PostFormValue("status"))); err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			http.Error(w, "Invalid status", http.StatusBadRequest)
		case errors.Is(err, ErrNotFound):
			http.Error(w, "Task not found", http.StatusNotFound)
		default:
			h.logger.Error("move task", slog.Any("error", err), slog.Int64("id", id))
			http.Error(w, "Failed to move task", http.StatusInternalServerError)
		}
		return
	}
	http.Redirect(w, r, "/projects/tasks/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
}

// DeleteTask removes a task and returns to its board.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}
	detail, err := h.service.TaskDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Task not found", http.StatusNotFound)
			return
		}
		h.logger.Error("load task", slog.Any("error", err), slog.Int64("id", id))
		http.Error(w, "Failed to delete task", http.StatusInternalServerError)
		return
	}
	if err := h.service.DeleteTask(r.Context(), id); err != nil {
		h.logger.Error("delete task", slog.Any("error", err), slog.Int64("id", id))
		http.Error(w, "Failed to delete task", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/projects/"+strconv.FormatInt(detail.Task.BoardID, 10), http.StatusSeeOther)
}

// Comment appends to a task's thread.
func (h *Handler) Comment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	if _, err := h.service.Comment(r.Context(), id, currentUserID(r), r.PostFormValue("body")); err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			h.flashError(r, err.Error())
		case errors.Is(err, ErrNotFound):
			http.Error(w, "Task not found", http.StatusNotFound)
			return
		default:
			h.logger.Error("create comment", slog.Any("error", err), slog.Int64("task", id))
			http.Error(w, "Failed to add comment", http.StatusInternalServerError)
			return
		}
	}
	http.Redirect(w, r, "/projects/tasks/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
}

func (h *Handler) flashError(r *http.Request, msg string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: msg})
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page, title string, data map[string]any) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken := ""
	if h.csrf != nil && sess != nil {
		csrfToken, _ = h.csrf.EnsureToken(r.Context(), sess)
	}
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	if err := h.templates.Render(w, page, view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}); err != nil {
		h.logger.Error("render page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func currentUserID(r *http.Request) int64 {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0
	}
	id, _ := strconv.ParseInt(sess.User(), 10, 64)
	return id
}
