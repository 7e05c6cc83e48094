package postgres

import (
	"errors"
	"regexp"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	appErrors "tour-booking/pkg/errors"
)

const (
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
	pgNotNullViolation    = "23502"
	pgForeignKeyViolation = "23503"
	pgInvalidText         = "22P02"
)

// Key (name)=(The Forest Hiker) already exists.
var duplicateKeyDetail = regexp.MustCompile(`Key \(([^)]+)\)=\(([^)]*)\)`)

// translateError maps driver failures onto the application error kinds.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return appErrors.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return appErrors.Duplicate("", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			field := ""
			if m := duplicateKeyDetail.FindStringSubmatch(pgErr.Detail); m != nil {
				field = m[1]
			}
			return appErrors.Duplicate(field, err)
		case pgCheckViolation, pgNotNullViolation, pgForeignKeyViolation:
			return appErrors.Validation("invalid input data: "+pgErr.Message, err)
		case pgInvalidText:
			return appErrors.Validation("invalid value: "+pgErr.Message, err)
		}
	}

	return err
}
