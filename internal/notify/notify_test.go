package notify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

func TestNew_NoURLIsNoop(t *testing.T) {
	p, err := New(&config.EventsConfig{Subject: "sitebuilder.builds"})
	require.NoError(t, err)
	require.IsType(t, Noop{}, p)
	require.NoError(t, p.Publish(t.Context(), "b1", []byte(`{}`)))
	p.Close()

	p, err = New(nil)
	require.NoError(t, err)
	require.IsType(t, Noop{}, p)
}

func TestNew_UnreachableServerIsRuntimeError(t *testing.T) {
	_, err := New(&config.EventsConfig{NATSURL: "nats://127.0.0.1:1", Subject: "x"})
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryRuntime))
}
