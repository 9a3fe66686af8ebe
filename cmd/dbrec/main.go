// Command dbrec is the companion CLI for dbrec projects. It generates
// model structs from a YAML schema and checks database connectivity.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dbrec",
	Short: "Companion tooling for dbrec models",
	Long: `dbrec is the companion CLI for projects using the dbrec record mapper.

Examples:

  dbrec generate -f schema.yaml -o models/models.go
  dbrec ping sqlite:app.db
  dbrec ping
`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(pingCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
