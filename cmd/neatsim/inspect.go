package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baldhumanity/neatsim/neat/nn"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <network-file>",
		Short: "Describe a saved network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			net, err := nn.Load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d nodes (%d inputs, %d outputs), %d links, activation %s\n",
				args[0], len(net.Nodes()), net.NumInputs(), net.NumOutputs(), len(net.Links()), net.Activation())
			fmt.Fprintf(out, "max depth %d, cyclic %t\n\n", net.MaxDepth(), net.HasCycle())
			fmt.Fprintln(out, nodeTable(net))
			fmt.Fprintln(out)
			fmt.Fprintln(out, linkTable(net))
			return nil
		},
	}
}
