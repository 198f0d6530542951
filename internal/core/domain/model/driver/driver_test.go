package driver_test

import (
	"strings"
	"testing"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDriver(t *testing.T) {
	id := kernel.NewUUID()

	t.Run("should issue a token bound to the driver id", func(t *testing.T) {
		d, token, err := driver.NewDriver(id, " Alice ", "+15550101", time.Now())

		require.NoError(t, err)
		require.NoError(t, d.Validate())
		assert.Equal(t, "Alice", d.Name())
		assert.True(t, strings.HasPrefix(token.String(), id.String()+"."))
		assert.NotContains(t, string(d.TokenHash()), token.String())

		parsedID, secret, err := driver.ParseAccessToken(token.String())
		require.NoError(t, err)
		assert.True(t, parsedID.IsEqual(id))
		require.NoError(t, d.Authenticate(secret))
		assert.ErrorIs(t, d.Authenticate(secret+"x"), driver.ErrInvalidAccessToken)
	})

	t.Run("should issue different tokens", func(t *testing.T) {
		_, first, err := driver.NewDriver(kernel.NewUUID(), "Alice", "1", time.Now())
		require.NoError(t, err)
		_, second, err := driver.NewDriver(kernel.NewUUID(), "Alice", "1", time.Now())
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("should require name and phone", func(t *testing.T) {
		d, token, err := driver.NewDriver(id, "", " ", time.Now())

		require.Error(t, err)
		assert.Nil(t, d)
		assert.Empty(t, token)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Contains(t, err.Error(), "name")
		assert.Contains(t, err.Error(), "phone")
	})
}

func TestRestoreDriver(t *testing.T) {
	original, token, err := driver.NewDriver(kernel.NewUUID(), "Bob", "+15550102", time.Now())
	require.NoError(t, err)

	restored, err := driver.RestoreDriver(original.ID(), original.Name(), original.Phone(), original.TokenHash(), original.CreatedAt())
	require.NoError(t, err)

	_, secret, err := driver.ParseAccessToken(token.String())
	require.NoError(t, err)
	require.NoError(t, restored.Authenticate(secret))

	_, err = driver.RestoreDriver(original.ID(), "Bob", "1", nil, time.Now())
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestParseAccessToken(t *testing.T) {
	for _, token := range []string{"", "no-dot", kernel.NewUUID().String() + ".", "not-a-uuid.secret"} {
		_, _, err := driver.ParseAccessToken(token)
		assert.ErrorIs(t, err, driver.ErrInvalidAccessToken, token)
	}
}
