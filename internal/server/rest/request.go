package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/gotodo/internal/common"
	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type taskRequest struct {
	Name    *string `json:"name"`
	IsDone  *bool   `json:"is_done"`
	DueDate *string `json:"due_date"`
}

func isForm(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data"
}

func parseForm(w http.ResponseWriter, r *http.Request) (url.Values, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, fmt.Errorf("%w: invalid form body", common.ErrInvalidInput)
	}
	return r.PostForm, nil
}

// decodeJSON fills dst from the body. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: invalid request body", common.ErrInvalidInput)
	}
	return nil
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, error) {
	var req credentialsRequest
	if !isForm(r) {
		return req, decodeJSON(w, r, &req)
	}

	form, err := parseForm(w, r)
	if err != nil {
		return req, err
	}
	req.Username = form.Get("username")
	req.Password = form.Get("password")
	return req, nil
}

func decodeTask(w http.ResponseWriter, r *http.Request) (taskRequest, error) {
	var req taskRequest
	if !isForm(r) {
		return req, decodeJSON(w, r, &req)
	}

	form, err := parseForm(w, r)
	if err != nil {
		return req, err
	}
	if v, ok := form["name"]; ok && len(v) > 0 {
		req.Name = &v[0]
	}
	if v, ok := form["due_date"]; ok && len(v) > 0 {
		req.DueDate = &v[0]
	}
	if v, ok := form["is_done"]; ok && len(v) > 0 {
		done, err := strconv.ParseBool(v[0])
		if err != nil {
			return req, fmt.Errorf("%w: is_done must be a boolean", common.ErrInvalidInput)
		}
		req.IsDone = &done
	}
	return req, nil
}

// taskID reads the {id} path variable. Anything that is not a task id is
// reported as not found.
func taskID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, common.ErrorNotFound
	}
	return id, nil
}
