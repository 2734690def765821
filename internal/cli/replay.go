package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/canopy/internal/journal"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Session  string // optional - specific session only
}

// ReplayEntry is one journal row in CLI output.
type ReplayEntry struct {
	Seq         int64           `json:"seq"`
	Session     string          `json:"session"`
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	Fingerprint string          `json:"fingerprint,omitempty"`
	RecordedAt  string          `json:"recorded_at"`
}

// ReplayListing holds the journal listing result.
type ReplayListing struct {
	Sessions []string      `json:"sessions"`
	Entries  []ReplayEntry `json:"entries"`
	Total    int           `json:"total"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "List the entries of a mutation journal",
		Long: `List the entries of a mutation journal in sequence order.

The journal is the sqlite log a store writes through the journal plugin.
Each entry shows its sequence number, session, mutation type, canonical
payload, and the state fingerprint recorded after it applied. Verifying
those fingerprints against live handlers requires the store's Go
definitions, so re-application happens through journal.Replay in code;
this command reviews what was recorded.

Exit codes:
  0 - listing produced
  2 - command error (journal not found, unreadable, etc.)

Examples:
  canopy replay --db ./canopy.db
  canopy replay --db ./canopy.db --session 0190f6c2-...
  canopy replay --db ./canopy.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplayList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the journal database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "list a specific session only")

	return cmd
}

func runReplayList(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	j, err := journal.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	sessions, err := j.Sessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}
	entries, err := j.Entries(ctx, opts.Session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read entries", err)
	}

	listing := ReplayListing{Sessions: sessions, Total: len(entries)}
	for _, e := range entries {
		listing.Entries = append(listing.Entries, ReplayEntry{
			Seq:         e.Seq,
			Session:     e.Session,
			Type:        e.Type,
			Payload:     json.RawMessage(e.Payload),
			Fingerprint: e.Fingerprint,
			RecordedAt:  e.RecordedAt,
		})
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if formatter.Format == "json" {
		return formatter.Success(listing)
	}

	w := formatter.Writer
	if listing.Total == 0 {
		fmt.Fprintln(w, "No entries found in journal.")
		return nil
	}

	fmt.Fprintf(w, "Journal: %d entr%s across %d session(s)\n\n",
		listing.Total, plural(listing.Total, "y", "ies"), len(listing.Sessions))
	for _, e := range listing.Entries {
		fmt.Fprintf(w, "%6d  %s  %s\n", e.Seq, e.Type, string(e.Payload))
		if opts.Verbose {
			fmt.Fprintf(w, "        session=%s\n", e.Session)
			fmt.Fprintf(w, "        recorded=%s\n", e.RecordedAt)
			if e.Fingerprint != "" {
				fmt.Fprintf(w, "        fingerprint=%s\n", e.Fingerprint)
			}
		}
	}
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
