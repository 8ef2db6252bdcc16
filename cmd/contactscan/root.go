// Package main provides the entry point for the contactscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for contactscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contactscan",
		Short: "Extract contact information from a website",
		Long: `contactscan crawls a website one hop deep from a seed URL and extracts
contact information (email addresses and phone numbers) from the seed
page and its same-site subpages.

By default pages are fetched over plain HTTP. Use --render for sites
that build their markup with JavaScript.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
