// Package oautherr formats authorization endpoint failures. Errors raised before a
// redirect URI has been verified are written as plain HTTP responses; later
// protocol errors are redirected back to the client.
package oautherr

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/intrafind/ihub-apps-sub004/internal/constants"
	"github.com/intrafind/ihub-apps-sub004/internal/logging"
)

type Error struct {
	Code        string
	Description string
	Status      int
}

func (e *Error) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func New(status int, code, description string) *Error {
	return &Error{Code: code, Description: description, Status: status}
}

func InvalidRequest(description string) *Error {
	return New(http.StatusBadRequest, constants.ErrInvalidRequest, description)
}

func AccessDenied(description string) *Error {
	return New(http.StatusForbidden, constants.ErrAccessDenied, description)
}

func LoginRequired(description string) *Error {
	return New(http.StatusUnauthorized, constants.ErrLoginRequired, description)
}

func ServerError(description string) *Error {
	return New(http.StatusInternalServerError, constants.ErrServerError, description)
}

// From converts any error into an *Error. Errors that are not protocol errors
// become server_error so that internals never reach the response body.
func From(err error) *Error {
	var oe *Error
	if errors.As(err, &oe) {
		return oe
	}
	return ServerError("internal error")
}

func noStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// WritePlain responds with a text/plain body of the form "code: description".
func WritePlain(w http.ResponseWriter, r *http.Request, err error) {
	oe := From(err)
	status := oe.Status
	if status == 0 {
		status = http.StatusBadRequest
	}
	l := logging.FromRequest(r).WithField("error", oe.Code)
	if status >= http.StatusInternalServerError {
		l.WithError(err).Error("authorization request failed")
	} else {
		l.WithField("description", oe.Description).Info("authorization request rejected")
	}
	noStore(w)
	http.Error(w, oe.Error(), status)
}

// Redirect sends the error to an already verified redirect URI, preserving any
// query parameters registered with the URI and echoing state verbatim.
func Redirect(w http.ResponseWriter, r *http.Request, redirectURI, state string, err error) {
	oe := From(err)
	params := url.Values{}
	params.Set(constants.ParamError, oe.Code)
	if oe.Description != "" {
		params.Set(constants.ParamErrorDescription, oe.Description)
	}
	if state != "" {
		params.Set(constants.ParamState, state)
	}
	loc, buildErr := AppendQuery(redirectURI, params)
	if buildErr != nil {
		WritePlain(w, r, InvalidRequest("malformed redirect_uri"))
		return
	}
	logging.FromRequest(r).WithField("error", oe.Code).Info("redirecting authorization error to client")
	noStore(w)
	http.Redirect(w, r, loc, http.StatusFound)
}

// AppendQuery merges params into the query string of rawURL.
func AppendQuery(rawURL string, params url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse url: %w", err)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
