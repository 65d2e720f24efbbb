package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tmoulton/seminar-events/internal/logger"
	"github.com/tmoulton/seminar-events/internal/storage"
)

func newRetryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retry",
		Short: "Retry calendar publishes that failed on earlier runs",
		Long: `Re-scans each list's history for talks with a resolved start time that
were never pushed to the calendar and publishes them. Extraction and identity
results are never recomputed.`,
		RunE: runRetry,
	}
}

func runRetry(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
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

	for _, list := range cfg.Lists {
		history, err := store.LoadHistory(list.ListID)
		if err != nil {
			logger.Error("loading history failed", logger.Fields{"list": list.ListID}, err)
			continue
		}

		pending := len(history.Pending())
		if pending == 0 {
			continue
		}

		published := assembler.Retry(cmd.Context(), history)
		if err := store.SaveHistory(list.ListID, history); err != nil {
			return err
		}
		logger.Info("retried pending publishes", logger.Fields{
			"list":      list.ListID,
			"pending":   pending,
			"published": published,
		})
	}
	return nil
}
