package users_test

import (
	"testing"

	apperrors "github.com/jrsteele09/infonow-server/internal/errors"
	"github.com/jrsteele09/infonow-server/users"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	name, err := users.NormalizeName("  Ada Lovelace ")
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", name)

	for _, in := range []string{"", "   ", "\t\n"} {
		_, err := users.NormalizeName(in)
		require.ErrorIs(t, err, apperrors.ErrBadRequest)
		require.Contains(t, err.Error(), "Name is required")
	}
}

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "new-user@example.com", users.NormalizeEmail(" New-User@Example.com "))
}
