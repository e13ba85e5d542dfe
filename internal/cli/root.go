package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "termsim",
	Short: "Interactive terminal exercises on a simulated filesystem",
	Long: asciiLogo + `

termsim runs guided command-line exercises against an in-memory Linux-like
filesystem. Each exercise is a sequence of steps; every command you type is
executed by the simulated shell and then checked against the current step.

Nothing touches your real disk: ls, cd, mkdir, touch, cat, echo, rm and nano
all operate on the simulated tree.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Progress store unreachable
  12 - Exercise missing or malformed
  13 - AI validation service unavailable
  14 - Exercise not completed by a scripted run`,
	SilenceUsage: true,
}

// rootFlags holds the persistent flags shared by every subcommand.
var rootFlags struct {
	verbose    bool
	configPath string
	logFormat  string
	logLevel   string
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.Bool("help", false, "Help for termsim")
	pf.BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Enable verbose output for all commands")
	pf.StringVar(&rootFlags.configPath, "config", "", "Path to termsim.yaml (or the directory holding it)")
	pf.StringVar(&rootFlags.logFormat, "log-format", "", "Log format: text or json")
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: verbose, info or error")

	_ = rootCmd.RegisterFlagCompletionFunc("log-format", fixedCompletions("text", "json"))
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", fixedCompletions("verbose", "info", "error"))
}
