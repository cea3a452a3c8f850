package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromEnv_DefaultsToNoOp(t *testing.T) {
	t.Setenv("MAILER_TYPE", "")

	deliverer, err := NewFromEnv()
	require.NoError(t, err)
	assert.IsType(t, &NoOp{}, deliverer)
}

func TestNewFromEnv_SMTP(t *testing.T) {
	t.Setenv("MAILER_TYPE", "smtp")
	t.Setenv("SMTP_HOST", "relay.example.com")
	t.Setenv("SMTP_FROM", "digest@example.com")

	deliverer, err := NewFromEnv()
	require.NoError(t, err)
	assert.IsType(t, &SMTP{}, deliverer)
}

func TestNewFromEnv_UnknownType(t *testing.T) {
	t.Setenv("MAILER_TYPE", "carrier-pigeon")

	_, err := NewFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carrier-pigeon")
}
