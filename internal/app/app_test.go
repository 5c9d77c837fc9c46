package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableone/internal/infrastructure"
)

func TestNew_WiresComponents(t *testing.T) {
	t.Setenv("TABLEONE_LOGGING_OUTPUT", "stdout")
	infrastructure.ResetLoggerForTesting()

	application, err := New("test")
	require.NoError(t, err)

	assert.NotNil(t, application.Config)
	assert.NotNil(t, application.Logger)
	assert.NotNil(t, application.Session)
	assert.NotNil(t, application.Runner)
	assert.NotNil(t, application.Hub)
	require.NotNil(t, application.Server)
	assert.NotEmpty(t, application.Server.Addr)
	assert.NotNil(t, application.Server.Handler)
}
