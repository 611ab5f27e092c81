package routes

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"tasklist/app/controllers"
	"tasklist/app/middleware"
	"tasklist/app/views"
)

// RegisterRoutes sets up all routes for the application.
func RegisterRoutes(router *mux.Router, taskController *controllers.TaskController) {
	router.HandleFunc("/", taskController.Index).Methods(http.MethodGet)
	router.HandleFunc("/tasks", taskController.SubmitForm).Methods(http.MethodPost)
	router.HandleFunc("/tasks/{taskID}/complete", taskController.ToggleComplete).Methods(http.MethodPost)
	router.HandleFunc("/tasks/{taskID}/delete", taskController.DeleteTask).Methods(http.MethodPost)
	router.HandleFunc("/filter", taskController.SelectFilter).Methods(http.MethodPost)
	router.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.FS(views.StaticFS()))),
	).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/tasks", taskController.GetTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks", taskController.CreateTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{taskID}", taskController.GetTaskByID).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{taskID}", taskController.UpdateTask).Methods(http.MethodPatch)
	api.HandleFunc("/export", taskController.Export).Methods(http.MethodGet)
}

// NewRouter returns a router with every route registered behind the
// request-id, recovery and access-log middleware.
func NewRouter(taskController *controllers.TaskController, logger *log.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(
		middleware.WithRequestID,
		middleware.WithRecover(logger),
		middleware.WithAccessLog(logger),
	)
	RegisterRoutes(router, taskController)
	return router
}
