package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ayakoakasaka/csprojgen/internal/branding"
	"github.com/ayakoakasaka/csprojgen/internal/config"
	"github.com/ayakoakasaka/csprojgen/internal/errors"
	"github.com/ayakoakasaka/csprojgen/internal/logger"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` writes the C# project files needed to build a WebAssembly component:
the .csproj, the rd.xml trimming directives, and (for AOT builds) a nuget.config.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = viper.BindPFlag(config.KeyLogJSON, cmd.Root().PersistentFlags().Lookup("log-json"))
		_ = viper.BindPFlag(config.KeyLogVerbose, cmd.Root().PersistentFlags().Lookup("verbose"))
		config.Load()
		return logger.Initialize(viper.GetBool(config.KeyLogJSON), viper.GetBool(config.KeyLogVerbose))
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("log-json", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	err := rootCmd.Execute()
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

// printError writes err with its code and any hints attached along the way.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if code := errors.CodeOf(err); code != "" {
		fmt.Fprintf(w, "  code: %s\n", code)
	}
	if hints := errors.FlattenHints(err); hints != "" {
		fmt.Fprintf(w, "  hint: %s\n", hints)
	}
}
