package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/jacentio/todo-api/store"
	"github.com/jacentio/todo-api/todo"
)

func (s *server) health(c echo.Context) error {
	resp := healthResponse{
		Status:    "healthy",
		Timestamp: todo.Timestamp(s.now()),
		Table:     s.store.TableName(),
		Database:  "connected",
	}

	if err := s.store.Ping(c.Request().Context()); err != nil {
		_, message := storeErrorStatus(err)
		s.log.WithError(err).Error("health check failed")
		resp.Status = "unhealthy"
		resp.Database = "disconnected"
		resp.Error = message
		return c.JSON(http.StatusServiceUnavailable, resp)
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *server) listTodos(c echo.Context) error {
	input := store.ListInput{Limit: store.DefaultLimit}

	if raw := strings.TrimSpace(c.QueryParam("status")); raw != "" {
		status, ok := todo.ParseStatus(raw)
		if !ok {
			return c.JSON(http.StatusBadRequest, errorResponse{
				Error: "Invalid status. Must be one of: " + todo.FormatValidStatuses(),
			})
		}
		input.Status = status
	}

	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			input.Limit = store.NormalizeLimit(n)
		}
	}

	input.PageToken = c.QueryParam("next_token")
	if input.PageToken == "" {
		input.PageToken = c.QueryParam("pageToken")
	}

	result, err := s.store.List(c.Request().Context(), input)
	if err != nil {
		return s.storeFailure(c, "list", err)
	}

	s.log.WithFields(log.Fields{
		"count":  result.Count,
		"status": string(input.Status),
	}).Debug("listed todos")

	var filter *string
	if input.Status != "" {
		status := string(input.Status)
		filter = &status
	}

	return c.JSON(http.StatusOK, listResponse{
		StatusFilter: filter,
		Todos:        result.Items,
		Count:        result.Count,
		TotalScanned: result.ScannedCount,
		NextToken:    result.NextPageToken,
	})
}

func (s *server) getTodo(c echo.Context) error {
	id, ok := todoID(c)
	if !ok {
		return echo.ErrNotFound
	}

	t, err := s.store.Get(c.Request().Context(), id)
	if err != nil {
		return s.storeFailure(c, "get", err)
	}
	return c.JSON(http.StatusOK, t)
}

func (s *server) createTodo(c echo.Context) error {
	payload, berr := s.decodeBody(c)
	if berr != nil {
		return c.JSON(berr.status, errorResponse{Error: berr.message})
	}

	fields, err := todo.Validate(payload, false)
	if err != nil {
		return validationFailure(c, err)
	}

	t := todo.New(s.opts.newID(), fields, s.now())
	if err := s.store.Put(c.Request().Context(), t); err != nil {
		return s.storeFailure(c, "create", err)
	}

	s.log.WithField("todo_id", t.ID).Info("created todo")
	return c.JSON(http.StatusCreated, t)
}

func (s *server) updateTodo(c echo.Context) error {
	id, ok := todoID(c)
	if !ok {
		return echo.ErrNotFound
	}
	ctx := c.Request().Context()

	payload, berr := s.decodeBody(c)
	if berr != nil {
		return c.JSON(berr.status, errorResponse{Error: berr.message})
	}

	fields, err := todo.Validate(payload, true)
	if err != nil {
		return validationFailure(c, err)
	}

	if _, err := s.store.Get(ctx, id); err != nil {
		return s.storeFailure(c, "update", err)
	}

	updated, err := s.store.UpdateFields(ctx, id, fields, s.now())
	if err != nil {
		return s.storeFailure(c, "update", err)
	}

	s.log.WithField("todo_id", id).Info("updated todo")
	return c.JSON(http.StatusOK, updated)
}

func (s *server) deleteTodo(c echo.Context) error {
	id, ok := todoID(c)
	if !ok {
		return echo.ErrNotFound
	}
	ctx := c.Request().Context()

	if _, err := s.store.Get(ctx, id); err != nil {
		return s.storeFailure(c, "delete", err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return s.storeFailure(c, "delete", err)
	}

	s.log.WithField("todo_id", id).Info("deleted todo")
	return c.JSON(http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Todo %s deleted successfully", id),
	})
}

// todoID returns the :id path parameter. An empty id never names a todo,
// so "/todos/" is treated as an unknown endpoint.
func todoID(c echo.Context) (string, bool) {
	id := c.Param("id")
	return id, strings.TrimSpace(id) != ""
}

func validationFailure(c echo.Context, err error) error {
	var verr *todo.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: verr.Message})
	}
	return err
}

// storeFailure writes the client-facing response for a store error.
// Server-side failures are logged with full detail.
func (s *server) storeFailure(c echo.Context, op string, err error) error {
	status, message := storeErrorStatus(err)

	entry := s.log.WithError(err).WithFields(log.Fields{
		"op":     op,
		"status": status,
	})
	if id := c.Param("id"); id != "" {
		entry = entry.WithField("todo_id", id)
	}
	if status >= http.StatusInternalServerError {
		entry.Error("store operation failed")
	} else {
		entry.Debug("store operation rejected")
	}

	return c.JSON(status, errorResponse{Error: message})
}

// storeErrorStatus maps a store error to an HTTP status and a message that
// is safe to return to clients.
func storeErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "Todo not found"
	case errors.Is(err, store.ErrInvalidPageToken):
		return http.StatusBadRequest, "Invalid pagination token"
	}

	kind, ok := store.KindOf(err)
	if !ok {
		return http.StatusInternalServerError, "Internal server error"
	}
	switch kind {
	case store.TableMissing:
		return http.StatusInternalServerError, "Database table not found"
	case store.InvalidRequest:
		return http.StatusBadRequest, "Invalid request data"
	case store.ConditionFailed:
		return http.StatusNotFound, "Item not found or condition failed"
	default:
		return http.StatusInternalServerError, "Database operation failed"
	}
}
