package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gotodo/internal/common"
	"github.com/dmitrijs2005/gotodo/internal/server/models"
	"github.com/dmitrijs2005/gotodo/internal/timex"
)

type messageResponse struct {
	Message string `json:"message"`
}

type tokensResponse struct {
	Message      string `json:"message,omitempty"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type taskResponse struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	IsDone      bool       `json:"is_done"`
	CreatedAt   time.Time  `json:"created_at"`
	DueDate     *string    `json:"due_date"`
	CompletedAt *time.Time `json:"completed_date"`
}

func newTaskResponse(t *models.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Name:        t.Name,
		IsDone:      t.IsDone,
		CreatedAt:   t.CreatedAt.UTC(),
		DueDate:     timex.FormatDate(t.DueDate),
		CompletedAt: t.CompletedAt,
	}
}

func newTaskListResponse(list []*models.Task) []taskResponse {
	out := make([]taskResponse, 0, len(list))
	for _, t := range list {
		out = append(out, newTaskResponse(t))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// errorStatus maps service errors onto HTTP statuses.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, common.ErrUnauthenticated):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports err to the client. Internal failures are logged and
// hidden behind a generic message.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	switch status {
	case http.StatusInternalServerError:
		a.logger.Error(r.Context(), "request failed", "error", err)
		writeMessage(w, status, common.ErrorInternal.Error())
		return
	case http.StatusUnauthorized:
		w.Header().Set("WWW-Authenticate", common.BearerScheme)
		a.logger.Debug(r.Context(), "token rejected", "error", err)
	}
	writeMessage(w, status, err.Error())
}
