package cmd

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mark3labs/llmprices/internal/catalog"
	"github.com/mark3labs/llmprices/internal/config"
)

var (
	snapshotDir   string
	snapshotReset bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [source]",
	Short: "Save the price documents locally for offline use",
	Long: `Fetch models.json and providers.json and save them to a local directory.
Afterwards '--source cached' (or '--source <dir>') reads prices from there.

Both documents are validated before anything is written, so a failed fetch
never replaces a good snapshot.

Sources:
  (none)      The configured --source
  <url>       A base URL serving both documents
  <dir>       A local directory holding both documents
  embedded    The snapshot shipped with this binary

Examples:
  llmprices snapshot https://example.com/data
  llmprices snapshot embedded --dir ./prices
  llmprices snapshot --reset`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotDir, "dir", "", "directory to write to (default is the data directory)")
	snapshotCmd.Flags().BoolVar(&snapshotReset, "reset", false, "remove the saved snapshot instead of fetching")
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	dir := snapshotDir
	if dir == "" {
		var err error
		if dir, err = catalog.DataDir(); err != nil {
			return err
		}
	}
	return snapshot(cmd, args, dir, snapshotReset)
}

func snapshot(cmd *cobra.Command, args []string, dir string, reset bool) error {
	status := cmd.ErrOrStderr()

	if reset {
		if err := catalog.RemoveSnapshot(dir); err != nil {
			return fmt.Errorf("failed to remove snapshot: %w", err)
		}
		fmt.Fprintf(status, "Snapshot removed from %s.\n", dir)
		return nil
	}

	source := viper.GetString(config.KeySource)
	if len(args) > 0 {
		source = args[0]
	}
	if source == catalog.CachedSourceName {
		return fmt.Errorf("cannot snapshot the saved snapshot onto itself")
	}

	src, err := catalog.ResolveSource(source, http.DefaultClient)
	if err != nil {
		return fmt.Errorf("invalid source: %w", err)
	}

	fmt.Fprintf(status, "Fetching prices from %s...\n", src)
	cat, err := catalog.Snapshot(commandContext(cmd), src, dir)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	printSnapshotSummary(status, dir, cat)
	return nil
}

func printSnapshotSummary(w io.Writer, dir string, cat *catalog.Catalog) {
	fmt.Fprintf(w, "Snapshot saved to %s: %d providers, %d models.\n", dir, len(cat.ProviderIDs()), len(cat.Models))
}
