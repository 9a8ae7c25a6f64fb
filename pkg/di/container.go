// Package di provides dependency injection container
package di

import (
	"github.com/ssargent/navcodec/pkg/api"     //nolint:depguard
	"github.com/ssargent/navcodec/pkg/journal" //nolint:depguard
)

// Journal is a run journal the commands record to and list from
type Journal interface {
	api.RunStore
	Close() error
}

// JournalOpener opens the journal stored in dir
type JournalOpener func(dir string) (Journal, error)

// Container holds all the dependencies for the application
type Container struct {
	serverFactory api.ServerFactory
	journalOpener JournalOpener
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		serverFactory: api.NewServerFactory(),
		journalOpener: openPebbleJournal,
	}
}

func openPebbleJournal(dir string) (Journal, error) {
	j, err := journal.Open(dir)
	if err != nil {
		return nil, err
	}
	return j, nil
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}

// GetJournalOpener returns the journal opener
func (c *Container) GetJournalOpener() JournalOpener {
	return c.journalOpener
}

// SetJournalOpener allows overriding the journal opener (for testing)
func (c *Container) SetJournalOpener(opener JournalOpener) {
	c.journalOpener = opener
}
