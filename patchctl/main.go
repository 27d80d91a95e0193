// patchctl synthesises microstrip patch arrays and tunes them against solved
// S11 curves. The design and its tuning history live in a session file
// shared by the sub-commands.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	cfgFile     string
	sessionFile string
)

var rootCmd = &cobra.Command{
	Use:   "patchctl",
	Short: "Microstrip patch array synthesis and resonance tuning",
	Long: `Synthesise a coax-fed microstrip patch array from frequency, gain and
substrate, then close the loop with an external EM solver: feed back the
solved S11 curve and patchctl rescales the geometry until the resonance
lands on the design frequency.

Design inputs come from patcharray.yaml (or --config), PATCHARRAY_*
environment variables and a .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return ReadAppConfig(cfgFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./patcharray.yaml)")
	rootCmd.PersistentFlags().StringVarP(&sessionFile, "session", "s", "session.json", "session file")
}

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	errColor  = color.New(color.FgRed, color.Bold)
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		errColor.Fprintf(os.Stderr, "error: ")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
