package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestSerializationFailure(t *testing.T) {
	serialization := &pgconn.PgError{Code: "40001", Message: "could not serialize access due to concurrent update"}
	require.True(t, SerializationFailure(serialization))
	require.True(t, SerializationFailure(fmt.Errorf("record payment: %w", serialization)))

	unique := &pgconn.PgError{Code: "23505"}
	require.False(t, SerializationFailure(unique))
	require.False(t, SerializationFailure(errors.New("connection reset")))
	require.False(t, SerializationFailure(nil))
}
