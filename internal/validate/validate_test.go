package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Driver string `env:"BOOKS_STORE" validate:"oneof=memory postgres"`
	DSN    string `env:"DATABASE_URL" validate:"required_if=Driver postgres"`
	Limit  int    `json:"limit" validate:"gt=0"`
	Plain  string `validate:"required"`
}

func TestStruct_Valid(t *testing.T) {
	v := New()
	assert.NoError(t, v.Struct(sample{Driver: "memory", Limit: 1, Plain: "x"}))
}

func TestStruct_FieldErrorsUseTagNames(t *testing.T) {
	v := New()

	err := v.Struct(sample{Driver: "postgres", Limit: 0})
	require.Error(t, err)

	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "is required", fe["DATABASE_URL"])
	assert.Equal(t, "must be greater than 0", fe["limit"])
	assert.Equal(t, "is required", fe["Plain"])
	assert.NotContains(t, fe, "BOOKS_STORE")
}

func TestStruct_OneOf(t *testing.T) {
	v := New()

	err := v.Struct(sample{Driver: "sqlite", Limit: 1, Plain: "x"})
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "must be one of: memory postgres", fe["BOOKS_STORE"])
	assert.Contains(t, err.Error(), "BOOKS_STORE must be one of")
}
