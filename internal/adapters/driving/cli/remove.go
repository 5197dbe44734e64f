package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// segmentRemover is the subset of the store used by the remove command.
type segmentRemover interface {
	RemoveAll(ctx context.Context) error
	RemoveByIDs(ctx context.Context, ids []string) error
}

var (
	removeAll bool

	removerService segmentRemover
)

var removeCmd = &cobra.Command{
	Use:   "remove [id...]",
	Short: "Remove indexed segments",
	Long: `Removes embedded segments by id, or every segment under the configured
label with --all.`,
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVar(&removeAll, "all", false, "remove every segment under the configured label")
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	if !removeAll && len(args) == 0 {
		return errors.New("provide segment ids or --all")
	}

	if removerService == nil {
		if err := wire(); err != nil {
			return err
		}
	}
	if removerService == nil {
		return errors.New("store not configured")
	}

	if removeAll {
		if err := removerService.RemoveAll(cmd.Context()); err != nil {
			return fmt.Errorf("remove failed: %w", err)
		}
		cmd.Println("Removed all segments")
		return nil
	}

	if err := removerService.RemoveByIDs(cmd.Context(), args); err != nil {
		return fmt.Errorf("remove failed: %w", err)
	}
	cmd.Printf("Removed %d segments\n", len(args))
	return nil
}
