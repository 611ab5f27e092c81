package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"tasklist/app/export"
	"tasklist/app/logging"
	"tasklist/app/middleware"
	"tasklist/app/models"
	"tasklist/app/services"
	"tasklist/app/views"
)

// TaskController handles HTTP requests for the task list page and its JSON API.
type TaskController struct {
	App      *services.TaskListApp
	Exporter *export.Exporter
	Logger   *log.Logger
}

// NewTaskController creates a new TaskController.
func NewTaskController(app *services.TaskListApp, exporter *export.Exporter, logger *log.Logger) *TaskController {
	return &TaskController{App: app, Exporter: exporter, Logger: logger}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func taskIDFromRequest(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["taskID"], 10, 64)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrTaskDeleted), errors.Is(err, services.ErrUndelete):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidAuthor):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrUnknownFilter), errors.Is(err, export.ErrUnknownFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (c *TaskController) logFailure(r *http.Request, msg string, err error) {
	logging.Error(c.Logger, msg, map[string]any{
		"request_id": middleware.RequestIDFromContext(r.Context()),
		"error":      err.Error(),
	})
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Index handles GET /. An optional ?filter= selects the filter before rendering.
func (c *TaskController) Index(w http.ResponseWriter, r *http.Request) {
	if f := r.URL.Query().Get("filter"); f != "" {
		if err := c.App.SelectFilter(f); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	var buf bytes.Buffer
	if err := views.Render(&buf, views.NewPage(c.App.Snapshot())); err != nil {
		c.logFailure(r, "render_failed", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// SubmitForm handles POST /tasks from the page form.
func (c *TaskController) SubmitForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form payload", http.StatusBadRequest)
		return
	}
	if _, _, err := c.App.SubmitForm(r.Context(), r.PostFormValue("text"), r.PostFormValue("author")); err != nil {
		c.logFailure(r, "submit_failed", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	redirectHome(w, r)
}

// ToggleComplete handles POST /tasks/{taskID}/complete.
func (c *TaskController) ToggleComplete(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid task id", http.StatusBadRequest)
		return
	}
	if _, err := c.App.ToggleComplete(r.Context(), id); err != nil {
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			c.logFailure(r, "toggle_failed", err)
		}
		http.Error(w, err.Error(), code)
		return
	}
	redirectHome(w, r)
}

// DeleteTask handles POST /tasks/{taskID}/delete.
func (c *TaskController) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid task id", http.StatusBadRequest)
		return
	}
	if _, err := c.App.Delete(r.Context(), id); err != nil {
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			c.logFailure(r, "delete_failed", err)
		}
		http.Error(w, err.Error(), code)
		return
	}
	redirectHome(w, r)
}

// SelectFilter handles POST /filter.
func (c *TaskController) SelectFilter(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form payload", http.StatusBadRequest)
		return
	}
	if err := c.App.SelectFilter(r.PostFormValue("filter")); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	redirectHome(w, r)
}

type taskListResponse struct {
	Tasks     []models.Task `json:"tasks"`
	Total     int           `json:"total"`
	Completed int           `json:"completed"`
}

// GetTasks handles GET /api/tasks. Without ?filter= every task is returned.
func (c *TaskController) GetTasks(w http.ResponseWriter, r *http.Request) {
	all := c.App.Tasks()
	tasks := all
	if f := r.URL.Query().Get("filter"); f != "" {
		filter, err := models.ParseFilter(f)
		if err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		tasks = services.VisibleTasks(all, filter)
	}

	counts := services.Summarize(all)
	writeJSON(w, http.StatusOK, taskListResponse{
		Tasks:     tasks,
		Total:     counts.Total,
		Completed: counts.Completed,
	})
}

// CreateTask handles POST /api/tasks.
func (c *TaskController) CreateTask(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Text   string `json:"text"`
		Author string `json:"author"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErr(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	task, err := c.App.CreateTask(r.Context(), in.Text, in.Author)
	switch {
	case errors.Is(err, services.ErrEmptyField):
		w.WriteHeader(http.StatusNoContent)
		return
	case err != nil:
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			c.logFailure(r, "create_failed", err)
		}
		writeErr(w, code, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// GetTaskByID handles GET /api/tasks/{taskID}.
func (c *TaskController) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDFromRequest(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "Invalid task id")
		return
	}
	task, err := c.App.Get(id)
	if err != nil {
		writeErr(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// UpdateTask handles PATCH /api/tasks/{taskID}.
func (c *TaskController) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDFromRequest(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "Invalid task id")
		return
	}
	var patch models.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeErr(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	task, err := c.App.Update(r.Context(), id, patch)
	if err != nil {
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			c.logFailure(r, "update_failed", err)
		}
		writeErr(w, code, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Export handles GET /api/export?format=json|csv|yaml|pdf.
func (c *TaskController) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	b, contentType, err := c.Exporter.Export(c.App.Tasks(), format)
	if err != nil {
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			c.logFailure(r, "export_failed", err)
		}
		writeErr(w, code, err.Error())
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="tasks.%s"`, export.Extension(format)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
