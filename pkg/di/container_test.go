package di

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/navcodec/pkg/api"
	"github.com/ssargent/navcodec/pkg/journal"
	"github.com/ssargent/navcodec/pkg/logger"
)

type stubStarter struct{}

func (stubStarter) StartServer(context.Context, api.ServerConfig, api.RunStore, *logger.Logger) error {
	return nil
}

type stubFactory struct{}

func (stubFactory) CreateServerStarter() api.ServerStarter { return stubStarter{} }

func TestContainer_Defaults(t *testing.T) {
	c := NewContainer()

	assert.IsType(t, &api.DefaultServerFactory{}, c.GetServerFactory())

	j, err := c.GetJournalOpener()(filepath.Join(t.TempDir(), "journal"))
	require.NoError(t, err)
	defer j.Close()

	id, err := j.Record(journal.Run{ID: journal.NewRunID(), Operation: journal.OperationDecode})
	require.NoError(t, err)

	runs, err := j.List(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
}

func TestContainer_Overrides(t *testing.T) {
	c := NewContainer()

	c.SetServerFactory(stubFactory{})
	assert.IsType(t, stubStarter{}, c.GetServerFactory().CreateServerStarter())

	called := ""
	c.SetJournalOpener(func(dir string) (Journal, error) {
		called = dir
		return nil, nil
	})
	_, err := c.GetJournalOpener()("somewhere")
	require.NoError(t, err)
	assert.Equal(t, "somewhere", called)
}
