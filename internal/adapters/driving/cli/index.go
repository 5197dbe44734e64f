package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/graphrag/internal/core/domain"
	"github.com/custodia-labs/graphrag/internal/core/ports/driven"
	"github.com/custodia-labs/graphrag/internal/splitters"
)

var (
	indexID          string
	indexTitle       string
	indexSentences   int
	indexNoChildren  bool
	indexChunkSize   int
	indexUseChunking bool
)

var indexCmd = &cobra.Command{
	Use:   "index [file]",
	Short: "Index a document into the graph",
	Long: `Splits the document into parent paragraphs and child segments, embeds
the children and writes both levels to Neo4j.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexID, "id", "", "document id (default: file name without extension)")
	indexCmd.Flags().StringVar(&indexTitle, "title", "", "document title stored on parent nodes")
	indexCmd.Flags().IntVar(&indexSentences, "sentences", 2, "sentences per child segment")
	indexCmd.Flags().BoolVar(&indexNoChildren, "no-children", false, "embed whole parents instead of child segments")
	indexCmd.Flags().IntVar(&indexChunkSize, "chunk-size", splitters.DefaultChunkSize, "child chunk size when --fixed is set")
	indexCmd.Flags().BoolVar(&indexUseChunking, "fixed", false, "use fixed-size child chunks instead of sentences")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	path := args[0]

	if indexerService == nil {
		if err := wire(); err != nil {
			return err
		}
	}
	if indexerService == nil {
		return errors.New("indexer service not configured")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	id := indexID
	if id == "" {
		id = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	metadata := map[string]any{"id": id}
	if indexTitle != "" {
		metadata["title"] = indexTitle
	}
	doc := domain.NewDocument(string(data), metadata)

	parentSplitter := splitters.NewParagraphSplitter()
	var childSplitter driven.DocumentSplitter
	if !indexNoChildren {
		if indexUseChunking {
			childSplitter = &splitters.FixedSplitter{Size: indexChunkSize, Overlap: splitters.DefaultChunkOverlap}
		} else {
			childSplitter = splitters.NewSentenceSplitter(indexSentences)
		}
	}

	if err := indexerService.Index(cmd.Context(), doc, parentSplitter, childSplitter); err != nil {
		return fmt.Errorf("index failed: %w", err)
	}

	cmd.Printf("Indexed %s\n", id)
	return nil
}
