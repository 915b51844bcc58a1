// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/codebinder/internal/format"
)

var formattersCmd = &cobra.Command{
	Use:   "formatters",
	Short: "List formatter rules and report which binaries are on PATH",
	Long: `Formatters prints the extension-to-formatter rules in effect (built-in or
from the config file) and whether each formatter binary can be found on
PATH. Files whose formatter is missing are exported unformatted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := resolveConfig(cmd)
		iv := format.NewInvoker(cfg.Format, logger)

		w := cmd.OutOrStdout()
		for _, st := range iv.Probe() {
			status := "missing"
			if st.Available {
				status = "ok"
			}
			fmt.Fprintf(w, "%-22s %-8s %s (%s)\n",
				st.Rule.Name, status, st.Rule.Command,
				strings.Join(st.Rule.Extensions, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(formattersCmd)
}
