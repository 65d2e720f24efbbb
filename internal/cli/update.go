package cli

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tmoulton/seminar-events/internal/announce"
	"github.com/tmoulton/seminar-events/internal/config"
	"github.com/tmoulton/seminar-events/internal/logger"
	"github.com/tmoulton/seminar-events/internal/mailman"
	"github.com/tmoulton/seminar-events/internal/registry"
	"github.com/tmoulton/seminar-events/internal/storage"
)

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Fetch new announcements, resolve them and publish eligible talks",
		RunE:  runUpdate,
	}
}

func runUpdate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(cfg.Lists) == 0 {
		return fmt.Errorf("no lists configured; set lists in the config file")
	}

	publisher, err := newPublisher(cfg)
	if err != nil {
		return err
	}
	assembler, err := newAssembler(cfg, publisher)
	if err != nil {
		return err
	}
	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	ctx := cmd.Context()
	for _, list := range cfg.Lists {
		if err := updateList(ctx, cfg, store, assembler, list); err != nil {
			// One broken list must not halt the others.
			logger.Error("list update failed", logger.Fields{"list": list.ListID}, err)
		}
	}
	return nil
}

func updateList(ctx context.Context, cfg *config.Config, store *storage.Storage, assembler *registry.Assembler, list config.List) error {
	history, err := store.LoadHistory(list.ListID)
	if err != nil {
		return err
	}
	knownURLs, err := store.LoadURLs(list.ListID)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(knownURLs))
	for _, u := range knownURLs {
		known[u] = true
	}

	cookiesPath := filepath.Join(cfg.DataDir, fmt.Sprintf("cookies.%s.json", list.ListID))
	session, err := mailman.NewSession(list.Host, list.ListID, cfg.CredentialsPath, cookiesPath)
	if err != nil {
		return fmt.Errorf("opening session: %w", err)
	}
	archive := mailman.NewArchive(session)

	newURLs, err := archive.NewListingURLs(ctx, known)
	if err != nil {
		return fmt.Errorf("crawling archive: %w", err)
	}
	logger.Info("archive crawled", logger.Fields{
		"list": list.ListID,
		"new":  len(newURLs),
	})

	var announcements []*announce.Announcement
	for _, listingURL := range newURLs {
		data, err := archive.Download(ctx, listingURL)
		if err != nil {
			// Skip the single listing, keep the batch going.
			logger.Warn("listing download failed", logger.Fields{"url": listingURL})
			continue
		}
		if err := store.SaveListing(list.ListID, mailman.Index(listingURL), data); err != nil {
			return err
		}

		if history.Seen(listingURL) {
			continue
		}
		ann, err := announce.ParseListing(bytes.NewReader(data), listingURL)
		if err != nil {
			logger.Warn("unparseable listing skipped", logger.Fields{"url": listingURL})
			continue
		}
		announcements = append(announcements, ann)
	}

	added := assembler.Assemble(ctx, history, announcements)

	if err := store.SaveHistory(list.ListID, history); err != nil {
		return err
	}
	if err := store.SaveURLs(list.ListID, append(knownURLs, newURLs...)); err != nil {
		return err
	}

	logger.Info("list updated", logger.Fields{
		"list":     list.ListID,
		"resolved": len(added),
	})
	return nil
}
