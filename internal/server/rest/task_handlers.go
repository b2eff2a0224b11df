package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/gotodo/internal/common"
	"github.com/dmitrijs2005/gotodo/internal/server/services"
	"github.com/gorilla/mux"
)

func (a *API) writeTaskError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, common.ErrorNotFound) {
		writeMessage(w, http.StatusNotFound, fmt.Sprintf("Todo %s doesn't exist", mux.Vars(r)["id"]))
		return
	}
	a.writeError(w, r, err)
}

func (a *API) listTasks(w http.ResponseWriter, r *http.Request) {
	list, err := a.tasks.List(r.Context(), identityFrom(r.Context()))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTaskListResponse(list))
}

func (a *API) createTask(w http.ResponseWriter, r *http.Request) {
	req, err := decodeTask(w, r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	in := services.TaskInput{DueDate: req.DueDate}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.IsDone != nil {
		in.IsDone = *req.IsDone
	}

	task, err := a.tasks.Create(r.Context(), identityFrom(r.Context()), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	a.logger.Debug(r.Context(), "task created", "task_id", task.ID)
	writeJSON(w, http.StatusCreated, newTaskResponse(task))
}

func (a *API) getTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		a.writeTaskError(w, r, err)
		return
	}

	task, err := a.tasks.Get(r.Context(), identityFrom(r.Context()), id)
	if err != nil {
		a.writeTaskError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTaskResponse(task))
}

func (a *API) updateTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		a.writeTaskError(w, r, err)
		return
	}

	req, err := decodeTask(w, r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	task, err := a.tasks.Update(r.Context(), identityFrom(r.Context()), id, services.TaskPatch{
		Name:    req.Name,
		IsDone:  req.IsDone,
		DueDate: req.DueDate,
	})
	if err != nil {
		a.writeTaskError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTaskResponse(task))
}

func (a *API) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		a.writeTaskError(w, r, err)
		return
	}

	if err := a.tasks.Delete(r.Context(), identityFrom(r.Context()), id); err != nil {
		a.writeTaskError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
