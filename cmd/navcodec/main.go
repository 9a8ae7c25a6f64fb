package main

import (
	"github.com/ssargent/navcodec/cmd/navcodec/cmd"
	"github.com/ssargent/navcodec/pkg/di"
)

func main() {
	// Initialize dependency injection container
	container := di.NewContainer()

	// Inject dependencies into cmd package
	cmd.SetContainer(container)

	cmd.Execute()
}
