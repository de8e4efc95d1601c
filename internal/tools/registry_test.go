package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoTool(name string) Tool {
	return Tool{
		Name:        name,
		Description: "echoes its input",
		Parameters:  Parameters{Type: "object"},
		Execute: func(ctx context.Context, args json.RawMessage) (any, error) {
			return string(args), nil
		},
	}
}

func TestRegistry_Invoke_Success(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool("echo")))

	result, err := r.Invoke(context.Background(), "echo", json.RawMessage(`{"a":1}`))

	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, result)
}

func TestRegistry_Invoke_UnknownTool(t *testing.T) {
	r := NewRegistry()

	_, err := r.Invoke(context.Background(), "missing", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestRegistry_Invoke_ArgumentError(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewGeocodeTool()))

	_, err := r.Invoke(context.Background(), GeocodeToolName, json.RawMessage(`{not json`))

	require.Error(t, err)
	var argErr *ArgumentError
	assert.ErrorAs(t, err, &argErr)
}

func TestRegistry_Invoke_ExecutionError(t *testing.T) {
	r := NewRegistry()
	boom := fmt.Errorf("backend unavailable")
	require.NoError(t, r.Register(Tool{
		Name:       "broken",
		Parameters: Parameters{Type: "object"},
		Execute: func(ctx context.Context, args json.RawMessage) (any, error) {
			return nil, boom
		},
	}))

	_, err := r.Invoke(context.Background(), "broken", nil)

	require.Error(t, err)
	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "broken", execErr.Tool)
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool("echo")))

	err := r.Register(echoTool("echo"))

	require.Error(t, err)
	assert.ErrorContains(t, err, "already registered")
}

func TestRegistry_Defs_RegistrationOrder(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool("first")))
	require.NoError(t, r.Register(echoTool("second")))
	require.NoError(t, r.Register(echoTool("third")))

	defs := r.Defs()

	require.Len(t, defs, 3)
	assert.Equal(t, "first", defs[0].Function.Name)
	assert.Equal(t, "second", defs[1].Function.Name)
	assert.Equal(t, "third", defs[2].Function.Name)
	assert.Equal(t, "function", defs[0].Type)
}

func TestRegistry_Register_MissingExecutor(t *testing.T) {
	r := NewRegistry()

	err := r.Register(Tool{Name: "noop"})

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnknownTool))
}
