package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/japaniel/vocabforge/pkg/db"
	"github.com/japaniel/vocabforge/pkg/extract"
	"github.com/japaniel/vocabforge/pkg/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest FILE",
	Short: "Extract a book's vocabulary and store it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		title, _ := cmd.Flags().GetString("title")
		author, _ := cmd.Flags().GetString("author")
		level, _ := cmd.Flags().GetString("level")
		overwrite, _ := cmd.Flags().GetBool("overwrite")
		formatName, _ := cmd.Flags().GetString("format")

		if formatName == "" {
			formatName = filepath.Ext(path)
		}
		format, err := extract.ParseFormat(formatName)
		if err != nil {
			return err
		}
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		body, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		a, err := setup(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		bookID, err := a.store.UpsertBook(ctx, db.BookInput{Title: title, Author: author, Level: level}, overwrite)
		if err != nil {
			return err
		}
		return a.ingest(ctx, cmd, bookID, body, format)
	},
}

// ingest runs one book through a fresh engine and waits for the outcome.
func (a *app) ingest(ctx context.Context, cmd *cobra.Command, bookID int64, body []byte, format extract.Format) error {
	eng, err := a.newEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	res := eng.Enqueue(ctx, bookID, body, format)
	st := ingest.Status{BookID: bookID, State: res.Status, Message: res.Message}
	if res.Status == ingest.StateQueued {
		a.log.WithFields(logrus.Fields{"book_id": bookID, "job_id": res.JobID}).Info("queued, waiting")
		if st, err = eng.Wait(ctx, bookID); err != nil {
			return err
		}
	} else if full, ok := eng.Status(bookID); ok && full.JobID == res.JobID {
		st = full
	}

	if st.State != ingest.StateSuccess {
		return fmt.Errorf("ingestion %s: %s", st.State, st.Message)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Book %d: %d words, %d unique (%s)\n", bookID, st.WordsTotal, st.UniqueWords, st.Duration)
	return nil
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().String("title", "", "book title (defaults to the file name)")
	ingestCmd.Flags().String("author", "", "book author")
	ingestCmd.Flags().String("level", "", "reading level")
	ingestCmd.Flags().Bool("overwrite", false, "replace metadata of an existing book with the same title")
	ingestCmd.Flags().String("format", "", "input format: txt, fb2, epub, pdf, docx, html (defaults to the file extension)")
}
