package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
)

// app carries state shared by subcommands once flags are parsed.
type app struct {
	log *slog.Logger
}

// NewRootCmd builds the doctex command tree.
func NewRootCmd() *cobra.Command {
	var verbosity int
	a := &app{log: slog.New(slog.DiscardHandler)}

	rootCmd := &cobra.Command{
		Use:   "doctex",
		Short: "Convert documents to LaTeX",
		Long: `doctex parses Markdown, HTML, DOCX, PDF, CSV, text and JSON node trees,
marks configured abbreviations and writes the result as LaTeX.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.log = newLogger(verbosity)
			a.log.Debug("command started", "command", cmd.Name())
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG)")

	rootCmd.AddCommand(
		a.newRenderCmd(),
		a.newAbbreviateCmd(),
		newKindsCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// newLogger writes text logs to stderr. Without -v only warnings show.
func newLogger(verbosity int) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbosity >= 2:
		level = slog.LevelDebug
	case verbosity == 1:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "doctex version %s\n  commit: %s\n", version, commit)
		},
	}
}
