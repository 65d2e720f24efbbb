package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tmoulton/seminar-events/internal/announce"
	"github.com/tmoulton/seminar-events/internal/extract"
	"github.com/tmoulton/seminar-events/internal/storage"
	"github.com/tmoulton/seminar-events/internal/temporal"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse LIST_ID INDEX",
		Short: "Resolve a single stored listing and print the extracted metadata",
		Args:  cobra.ExactArgs(2),
		RunE:  runParse,
	}
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	return cmd
}

// parseOutput is the printable resolution of one listing.
type parseOutput struct {
	Title    string `json:"title"`
	PostedAt string `json:"posted_at"`
	Date     string `json:"date,omitempty"`
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
	Location string `json:"location,omitempty"`
	IsTalk   bool   `json:"is_talk"`
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagFormat != "text" && flagFormat != "json" {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	listID, index := args[0], args[1]
	data, err := store.ReadListing(listID, index)
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("listing %s/%s not found; run update first", listID, index)
	}

	ann, err := announce.ParseListing(bytes.NewReader(data), index)
	if err != nil {
		return err
	}

	rooms := extract.NewRooms(nil)
	if cfg.RoomsPath != "" {
		rooms, err = extract.LoadRooms(cfg.RoomsPath)
		if err != nil {
			return fmt.Errorf("loading room dictionary: %w", err)
		}
	}
	resolver := extract.NewResolver(temporal.NewRules(), cfg.Extract)
	resolved := resolver.Resolve(ann.Title, ann.Body, ann.PostedAt)

	out := parseOutput{
		Title:    announce.CleanTitle(ann.Title),
		PostedAt: ann.PostedAt.Format("2006-01-02 15:04"),
		Date:     resolved.Date,
		Start:    resolved.Start,
		End:      resolved.End,
		Location: rooms.Resolve(ann.Body),
		IsTalk:   announce.MatchesKeyword(ann.Title, cfg.Registry.TalkKeywords),
	}

	if flagFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("Title:    %s\n", out.Title)
	fmt.Printf("Posted:   %s\n", out.PostedAt)
	fmt.Printf("Date:     %s\n", orNA(out.Date))
	fmt.Printf("Start:    %s\n", orNA(out.Start))
	fmt.Printf("End:      %s\n", orNA(out.End))
	fmt.Printf("Location: %s\n", orNA(out.Location))
	fmt.Printf("Talk:     %t\n", out.IsTalk)
	return nil
}

func orNA(s string) string {
	if s == "" {
		return "NA"
	}
	return s
}
