package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/haythamforever/HonorHub/internal/version"
)

var (
	cfgFile   string
	apiURL    string
	apiToken  string
	verbose   bool
	outputFmt string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "honorctl",
		Short: "HonorHub CLI - certificate and settings administration",
		Long: `honorctl talks to a running HonorHub API to inspect and resend certificates,
manage settings and send test emails. The token, render-sample and seed
commands work locally against config and the database.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			initConfig()
			if outputFmt != "table" && outputFmt != "json" {
				return fmt.Errorf("unsupported output format %q (table, json)", outputFmt)
			}
			if verbose {
				fmt.Fprintf(cmd.ErrOrStderr(), "API URL: %s\n", apiURL)
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.honorctl.yaml)")
	pf.StringVar(&apiURL, "api-url", "", "HonorHub API base URL")
	pf.StringVar(&apiToken, "token", "", "bearer token for the API")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.StringVarP(&outputFmt, "output", "o", "table", "output format (table, json)")

	_ = viper.BindPFlag("api_url", pf.Lookup("api-url"))
	_ = viper.BindPFlag("api_token", pf.Lookup("token"))

	root.AddCommand(
		healthCmd(),
		statsCmd(),
		certificatesCmd(),
		settingsCmd(),
		testEmailCmd(),
		tokenCmd(),
		renderSampleCmd(),
		seedCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the honorctl version",
			RunE: func(cmd *cobra.Command, args []string) error {
				if outputFmt == "json" {
					return printJSON(cmd.OutOrStdout(), version.Get())
				}
				fmt.Fprintln(cmd.OutOrStdout(), version.String())
				return nil
			},
		},
	)
	return root
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".honorctl")
	}

	viper.SetEnvPrefix("HONORHUB")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}

	if apiURL == "" {
		apiURL = viper.GetString("api_url")
	}
	if apiToken == "" {
		apiToken = viper.GetString("api_token")
	}
	if apiURL == "" {
		apiURL = "http://localhost:8080"
	}
}
