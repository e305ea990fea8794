// Package repository implements the service stores on Postgres (pgx) and
// Redis (go-redis).
package repository

import (
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/learnmate/learnmate-backend/internal/model"
)

// requireRow turns a write that touched nothing into pgx.ErrNoRows so callers
// see the same error as a failed lookup.
func requireRow(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func dateArg(d *model.Date) interface{} {
	if d == nil {
		return nil
	}
	return d.Time
}

func datePtr(t *time.Time) *model.Date {
	if t == nil {
		return nil
	}
	d := model.NewDate(*t)
	return &d
}
