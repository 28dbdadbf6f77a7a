package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logrus.Error(err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ppmctl",
		Short: "Analyze contract documents against the ppm analysis service",
		Long: `ppmctl runs the same cache negotiation as the portal from the command line.

State (route, fingerprint, last analysis) is kept per profile in a local
session file, so "ppmctl view" shows the result of the last "ppmctl analyze".`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("profile", "default", "Session profile name")
	rootCmd.PersistentFlags().String("state-file", "", "Session file (default: $XDG_STATE_HOME/ppm/<profile>.msgpack)")

	fingerprintCmd := &cobra.Command{
		Use:   "fingerprint <file>...",
		Short: "Print the fingerprint and fallback route of a file selection",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runFingerprint,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze <file>...",
		Short: "Negotiate, upload if needed, and print the analysis",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAnalyze,
	}
	addOutputFlags(analyzeCmd)

	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "Print the analysis held by the profile, resolving it by route when needed",
		Args:  cobra.NoArgs,
		RunE:  runView,
	}
	addOutputFlags(viewCmd)

	foldersCmd := &cobra.Command{
		Use:   "folders <state> <city>",
		Short: "List work folders of a location with their cache flags",
		Args:  cobra.ExactArgs(2),
		RunE:  runFolders,
	}
	foldersCmd.Flags().String("open", "", "Open the named folder in the profile")

	cacheCmd := &cobra.Command{
		Use:   "cache <route>",
		Short: "Look up the cached analysis of a route",
		Args:  cobra.ExactArgs(1),
		RunE:  runCache,
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget the profile's current selection",
		Args:  cobra.NoArgs,
		RunE:  runClear,
	}

	rootCmd.AddCommand(fingerprintCmd, analyzeCmd, viewCmd, foldersCmd, cacheCmd, clearCmd)
	return rootCmd
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "text", "Output format: text|json|yaml")
	cmd.Flags().Bool("details", false, "Include line items in text output")
	cmd.Flags().String("xlsx", "", "Also write the line items to this XLSX file")
	cmd.Flags().String("csv", "", "Also write the line items to this CSV file")
}
