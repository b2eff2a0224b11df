package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/gotodo/internal/common"
	"github.com/dmitrijs2005/gotodo/internal/server/auth"
)

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(w, r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	user, err := a.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			writeMessage(w, http.StatusConflict, fmt.Sprintf("User %s already exists", req.Username))
			return
		}
		a.writeError(w, r, err)
		return
	}

	pair, err := a.tokens.IssuePair(user.UserName)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	a.logger.Info(r.Context(), "Registered", "username", user.UserName)
	writeJSON(w, http.StatusCreated, tokensResponse{
		Message:      fmt.Sprintf("User %s is created", user.UserName),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(w, r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	user, err := a.users.Verify(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUserNotFound):
			writeMessage(w, http.StatusForbidden, fmt.Sprintf("User %s doesn't exist", req.Username))
		case errors.Is(err, common.ErrUnauthenticated):
			writeMessage(w, http.StatusForbidden, "Wrong credentials")
		default:
			a.writeError(w, r, err)
		}
		return
	}

	pair, err := a.tokens.IssuePair(user.UserName)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokensResponse{
		Message:      fmt.Sprintf("Logged in as %s", user.UserName),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// revokeCurrent logs out the presented bearer token. The route sits behind
// requireToken, so a token that is already revoked never reaches here and
// gets 401 instead.
func (a *API) revokeCurrent(w http.ResponseWriter, r *http.Request, tokenType auth.TokenType, msg string) {
	token, err := bearerToken(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.tokens.Logout(r.Context(), token, tokenType); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, msg)
}

func (a *API) logoutAccess(w http.ResponseWriter, r *http.Request) {
	a.revokeCurrent(w, r, auth.TokenTypeAccess, "Access token has been revoked")
}

func (a *API) logoutRefresh(w http.ResponseWriter, r *http.Request) {
	a.revokeCurrent(w, r, auth.TokenTypeRefresh, "Refresh token has been revoked")
}

func (a *API) refreshToken(w http.ResponseWriter, r *http.Request) {
	token, err := bearerToken(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	access, err := a.tokens.Refresh(r.Context(), token)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokensResponse{AccessToken: access})
}
