package pgerror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestGetConstraintName(t *testing.T) {
	t.Run("wrapped unique violation", func(t *testing.T) {
		err := fmt.Errorf("insert: %w", &pgconn.PgError{
			Code:           UniqueViolation,
			ConstraintName: "closures_pkey",
		})
		name, ok := GetConstraintName(err)
		assert.True(t, ok)
		assert.Equal(t, "closures_pkey", name)
	})

	t.Run("foreign key violation", func(t *testing.T) {
		name, ok := GetConstraintName(&pgconn.PgError{
			Code:           ForeignKeyViolation,
			ConstraintName: "closures_node_id_fkey",
		})
		assert.True(t, ok)
		assert.Equal(t, "closures_node_id_fkey", name)
	})

	t.Run("other pg error codes are ignored", func(t *testing.T) {
		_, ok := GetConstraintName(&pgconn.PgError{
			Code:           "42P01",
			ConstraintName: "whatever",
		})
		assert.False(t, ok)
	})

	t.Run("non pg errors", func(t *testing.T) {
		_, ok := GetConstraintName(errors.New("connection refused"))
		assert.False(t, ok)
		_, ok = GetConstraintName(nil)
		assert.False(t, ok)
	})
}

func TestGetCode(t *testing.T) {
	code, ok := GetCode(fmt.Errorf("wrap: %w", &pgconn.PgError{Code: CheckViolation}))
	assert.True(t, ok)
	assert.Equal(t, CheckViolation, code)

	_, ok = GetCode(errors.New("plain"))
	assert.False(t, ok)
}
