// Command apclient drives endpoint resolution, dial, and handshake
// against a Spotify-style access point, analogous to original_source's
// demonstration binary (main.rs) but built on the ambient stack
// (SPEC_FULL.md §4.4) instead of being a throwaway demo.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "apclient",
		Short: "Access-point handshake client",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to apclient.yaml (optional)")

	root.AddCommand(newResolveCmd())
	root.AddCommand(newHandshakeCmd())
	root.AddCommand(newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
