package dbclient

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient is a registry test double; its operations are never used.
type fakeClient struct {
	Base
	tag string
}

func (f *fakeClient) Connect(context.Context) error { return nil }
func (f *fakeClient) Provider() string              { return f.tag }

func registerFake(t *testing.T, tag string) {
	t.Helper()
	Register(tag, func(cfg Config, logger *slog.Logger) Client {
		return &fakeClient{Base: Base{Cfg: cfg, Logger: logger}, tag: tag}
	})
}

func TestNew_SelectsRegisteredProvider(t *testing.T) {
	registerFake(t, "fake-main")

	client, err := New(Config{Provider: "fake-main", Host: "db.local"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "fake-main", client.Provider())
	assert.False(t, client.Connected())
}

func TestNew_UnsupportedProvider(t *testing.T) {
	registerFake(t, "fake-known")

	client, err := New(Config{Provider: "no-such-db"}, nil)
	assert.Nil(t, client)
	require.Error(t, err)

	var unsupported *UnsupportedProviderError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "no-such-db", unsupported.Provider)
	assert.Contains(t, unsupported.Available, "fake-known")
	assert.True(t, IsConfigurationError(err))
}

func TestNew_EmptyProvider(t *testing.T) {
	client, err := New(Config{}, nil)
	assert.Nil(t, client)
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.Contains(t, err.Error(), "provider")
}

func TestProviders_Sorted(t *testing.T) {
	registerFake(t, "fake-zz")
	registerFake(t, "fake-aa")

	names := Providers()
	assert.True(t, IsRegistered("fake-aa"))
	assert.True(t, IsRegistered("fake-zz"))
	assert.False(t, IsRegistered("fake-missing"))

	idxAA, idxZZ := -1, -1
	for i, n := range names {
		switch n {
		case "fake-aa":
			idxAA = i
		case "fake-zz":
			idxZZ = i
		}
	}
	require.NotEqual(t, -1, idxAA)
	require.NotEqual(t, -1, idxZZ)
	assert.Less(t, idxAA, idxZZ)
}
