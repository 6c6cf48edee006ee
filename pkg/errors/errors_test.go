package errors_test

import (
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/emrhub/emr/pkg/errors"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "port",
			Message: "must be between 0 and 65535",
		}
		assert.Equal(t, "validation failed for field port: must be between 0 and 65535", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Message: "invalid configuration",
		}
		assert.Equal(t, "validation failed: invalid configuration", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("constructor", func(t *testing.T) {
		err := pkgerrors.NewValidationError("port", 70000, "out of range")
		assert.Equal(t, "port", err.Field)
		assert.Equal(t, 70000, err.Value)
		assert.Equal(t, "out of range", err.Message)
	})
}

func TestConfigError(t *testing.T) {
	base := errors.New("strconv.Atoi: parsing \"abc\": invalid syntax")

	err := pkgerrors.NewConfigError("port", "PORT must be an integer", base)
	assert.Equal(t, "configuration error in port: PORT must be an integer", err.Error())
	assert.True(t, errors.Is(err, base))
	assert.True(t, pkgerrors.IsConfigError(fmt.Errorf("loading: %w", err)))

	bare := &pkgerrors.ConfigError{Message: "no component"}
	assert.Equal(t, "configuration error: no component", bare.Error())
	assert.Nil(t, bare.Unwrap())
}

func TestResourceError(t *testing.T) {
	opErr := &net.OpError{Op: "listen", Net: "tcp", Err: errors.New("address already in use")}

	err := pkgerrors.NewResourceError("listen", "socket", ":5000", opErr)
	assert.Equal(t, "failed to listen socket :5000: listen tcp: address already in use", err.Error())

	var target *net.OpError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "listen", target.Op)

	noID := pkgerrors.NewResourceError("shutdown", "server", "", errors.New("deadline exceeded"))
	assert.Equal(t, "failed to shutdown server: deadline exceeded", noID.Error())
}

func TestAuthenticationError(t *testing.T) {
	err := pkgerrors.NewAuthenticationError("api_key", "key mismatch", nil)
	assert.Equal(t, "authentication error (api_key): key mismatch", err.Error())
	assert.True(t, errors.Is(err, pkgerrors.ErrAPIKeyInvalid))
	assert.True(t, pkgerrors.IsAPIKeyError(err))
	assert.False(t, pkgerrors.IsValidationError(err))

	t.Run("wrapped cause decides the sentinel", func(t *testing.T) {
		missing := pkgerrors.NewAuthenticationError("api_key", "no key", pkgerrors.ErrAPIKeyRequired)
		assert.True(t, errors.Is(missing, pkgerrors.ErrAPIKeyRequired))
		assert.False(t, errors.Is(missing, pkgerrors.ErrAPIKeyInvalid))
		assert.True(t, pkgerrors.IsAPIKeyError(fmt.Errorf("request: %w", missing)))

		var authErr *pkgerrors.AuthenticationError
		require.True(t, pkgerrors.As(missing, &authErr))
		assert.Equal(t, "no key", authErr.Message)
	})
}

func TestSentinelHelpers(t *testing.T) {
	assert.True(t, pkgerrors.IsRateLimited(fmt.Errorf("client: %w", pkgerrors.ErrRateLimited)))
	assert.False(t, pkgerrors.IsRateLimited(errors.New("other")))
	assert.False(t, pkgerrors.IsConfigError(errors.New("other")))
}

func TestWrapResource(t *testing.T) {
	assert.Nil(t, pkgerrors.WrapResource("listen", "socket", "", nil))

	base := errors.New("boom")
	err := pkgerrors.WrapResource("serve", "server", "", base)
	assert.True(t, errors.Is(err, base))
}
