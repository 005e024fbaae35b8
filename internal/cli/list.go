package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/skillhub-labs/skillhub/internal/logger"
)

var (
	listJSON    bool
	listOffline bool
)

var listCmd = &cobra.Command{
	Use:   "list [pattern]",
	Short: "List skills published to the registry",
	Long: `List registry skills, optionally only those whose id contains [pattern].
The registry is synced first unless --offline is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().BoolVar(&listOffline, "offline", false, "Use the local mirror without syncing")
	rootCmd.AddCommand(listCmd)
}

type listEntry struct {
	ID          string   `json:"id"`
	Version     string   `json:"version"`
	Author      string   `json:"author"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

func runList(cmd *cobra.Command, args []string) error {
	pattern := ""
	if len(args) == 1 {
		pattern = args[0]
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	mirror := newMirror(cfg)

	if !listOffline {
		if err := mirror.EnsureFresh(cmd.Context()); err != nil {
			return err
		}
	} else if synced := mirror.LastSynced(); !synced.IsZero() {
		logger.G(cmd.Context()).WithField("synced", synced.Format(time.RFC3339)).Debug("using offline mirror")
	}

	entries, err := mirror.List(pattern)
	if err != nil {
		return err
	}

	rows := make([]listEntry, 0, len(entries))
	for _, e := range entries {
		row := listEntry{ID: e.Name, Keywords: []string{}}
		if d := e.Descriptor; d != nil {
			row.Version = d.Version
			row.Author = d.Author
			row.Description = d.Description
			row.Keywords = d.Keywords
		}
		rows = append(rows, row)
	}

	if listJSON {
		out, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling list: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No skills published yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVERSION\tDESCRIPTION")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.ID, dash(r.Version), dash(strings.TrimSpace(r.Description)))
	}
	return w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
