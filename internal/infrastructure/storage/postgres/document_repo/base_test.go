package document_repo

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"retailcore/internal/core/apperror"
)

func TestMapHeaderInsertError_DuplicateNumber(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "doc_sales_number_key",
	}
	data := map[string]any{"number": "INV-20251204-0001"}

	err := mapHeaderInsertError("doc_sales", data, pgErr)

	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicateSequenceNumber))
	var appErr *apperror.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, "INV-20251204-0001", appErr.Details["number"])
}

func TestMapHeaderInsertError_OtherConstraintWrapped(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23503",
		ConstraintName: "doc_sales_customer_id_fkey",
	}

	err := mapHeaderInsertError("doc_sales", map[string]any{}, pgErr)

	assert.False(t, apperror.HasCode(err, apperror.CodeDuplicateSequenceNumber))
	assert.ErrorContains(t, err, "insert doc_sales")
}

func TestMapHeaderInsertError_PrimaryKeyNotMapped(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "doc_sales_pkey",
	}

	err := mapHeaderInsertError("doc_sales", map[string]any{}, pgErr)

	assert.False(t, apperror.HasCode(err, apperror.CodeDuplicateSequenceNumber))
}
