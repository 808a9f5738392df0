package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"postapi/domain"
)

type errorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// HTTPErrorHandler renders every error returned by a handler or
// middleware as a JSON body with the matching status code.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code, body := errorResponse(err)
	if code >= http.StatusInternalServerError {
		c.Logger().Error(err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, body)
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

func errorResponse(err error) (int, errorBody) {
	var validationErr *domain.ValidationError
	var httpErr *echo.HTTPError
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, errorBody{Message: "Unauthenticated."}
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity, errorBody{
			Message: "The given data was invalid.",
			Errors:  validationErr.Fields,
		}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorBody{Message: "Not Found."}
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, errorBody{Message: "Resource already exists."}
	case errors.As(err, &httpErr):
		msg, ok := httpErr.Message.(string)
		if !ok || httpErr.Code >= http.StatusInternalServerError {
			msg = http.StatusText(httpErr.Code)
		}
		return httpErr.Code, errorBody{Message: msg}
	}
	return http.StatusInternalServerError, errorBody{Message: "Server Error"}
}
