package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/netusage/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long:  "Prints the configuration after merging config.yaml, NETUSAGE_* environment variables and defaults. Secrets are redacted.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return writeConfig(os.Stdout, cfg)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func writeConfig(w io.Writer, c *config.Config) error {
	out := *c
	out.Store.DatabaseURL = redact(out.Store.DatabaseURL)
	out.Source.Token = redact(out.Source.Token)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return eris.Wrap(err, "config: encode yaml")
	}
	return enc.Close()
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}
