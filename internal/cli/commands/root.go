package commands

import (
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xrmgen",
		Short: "Generate code from CRM entity metadata",
		Long: color.CyanString(`xrmgen - CRM metadata code generator

xrmgen reads entity metadata from a dump, selects the configured entities,
applies naming overrides and renders early-bound Go types, a GraphQL
schema or a custom template.`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default ./xrmgen.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Show debug output")
	rootCmd.PersistentFlags().String("source", "", "Metadata dump (.json, .yaml or .msgpack)")
	rootCmd.PersistentFlags().String("entities", "", "Comma separated entity logical names")
	rootCmd.PersistentFlags().String("namespace", "", "Namespace handed to the renderer")
	rootCmd.PersistentFlags().String("mapping", "", "Naming override document")
	rootCmd.PersistentFlags().Bool("include-non-standard", false, "Keep system entities that are hidden by default")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewGenerateCommand())
	rootCmd.AddCommand(NewEntitiesCommand())
	rootCmd.AddCommand(NewSnapshotCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			out := cmd.OutOrStdout()
			titleColor := color.New(color.FgCyan, color.Bold)
			valueColor := color.New(color.FgWhite)

			titleColor.Fprint(out, "xrmgen version: ")
			valueColor.Fprintln(out, Version)

			titleColor.Fprint(out, "Git commit: ")
			valueColor.Fprintln(out, GitCommit)

			titleColor.Fprint(out, "Build date: ")
			valueColor.Fprintln(out, BuildDate)

			titleColor.Fprint(out, "Go version: ")
			valueColor.Fprintln(out, goVer)
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
