package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gradient-sdk/cmd/experiments"
	"gradient-sdk/cmd/mockserver"
	"gradient-sdk/cmd/server"
)

func main() {
	commands := []*cobra.Command{
		experiments.NewExperimentsCommand(),
		mockserver.NewMockServerCommand(),
	}
	command := server.NewServerCommand()
	for _, cmd := range commands {
		command.AddCommand(cmd)
	}
	if err := command.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error occurred: %+v\n", err)
		os.Exit(1)
	}
}
