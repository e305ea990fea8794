package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/learnmate/learnmate-backend/internal/middleware"
	"github.com/learnmate/learnmate-backend/internal/model"
	"github.com/learnmate/learnmate-backend/internal/response"
	"github.com/learnmate/learnmate-backend/internal/service"
	"github.com/rs/zerolog"
)

// Postgres SQLSTATE codes the API maps to client errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgInvalidText         = "22P02"
	pgNumericOutOfRange   = "22003"
)

// respondError maps a service or store error onto the response envelope.
// Anything unrecognised is logged and reported as a 500.
func respondError(c *gin.Context, err error) {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, ve.Fields)
		return
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		case pgForeignKeyViolation:
			if c.Request.Method == http.MethodDelete {
				response.Fail(c, http.StatusConflict, response.ErrDependencyExists)
			} else {
				response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			}
			return
		case pgCheckViolation, pgInvalidText, pgNumericOutOfRange:
			response.Fail(c, http.StatusBadRequest, response.ErrValidation)
			return
		}
	}

	switch {
	case errors.Is(err, service.ErrProfileNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrProfileNotFound)
	case errors.Is(err, service.ErrProfileExists):
		response.Fail(c, http.StatusConflict, response.ErrProfileExists)
	case errors.Is(err, service.ErrNotEnrolled):
		response.Fail(c, http.StatusConflict, response.ErrNotEnrolled)
	case errors.Is(err, service.ErrUnauthenticated):
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
	case errors.Is(err, service.ErrForbidden):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrNotFound), errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrValidation):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"detail": err.Error()})
	case errors.Is(err, service.ErrConflict):
		response.FailWithMessage(c, http.StatusConflict, response.ErrConflict, err.Error())
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("Unhandled request error")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// paramID parses a positive int64 path parameter. It writes the 400 itself.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// paramUUID parses a UUID path parameter. It writes the 400 itself.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(c *gin.Context, name string) (*model.Date, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidQuery,
			map[string]string{name: name + " must be a date in YYYY-MM-DD format"})
		return nil, false
	}
	return &d, true
}

// identity returns the caller or writes a 401 when the middleware did not run.
func identity(c *gin.Context) (*model.Identity, bool) {
	ident := middleware.GetIdentity(c)
	if ident == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, false
	}
	return ident, true
}
