package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))

	err := translateError(gorm.ErrRecordNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, translateError(gorm.ErrDuplicatedKey), ErrDuplicateKey)

	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "ux_tracked_products_owner_canonical"}
	err = translateError(fmt.Errorf("insert: %w", pgErr))
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.Contains(t, err.Error(), "ux_tracked_products_owner_canonical")

	other := errors.New("connection reset")
	assert.Equal(t, other, translateError(other))

	fk := &pgconn.PgError{Code: "23503"}
	assert.NotErrorIs(t, translateError(fk), ErrDuplicateKey)
}
