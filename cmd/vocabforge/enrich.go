package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/japaniel/vocabforge/pkg/dictionary"
	"github.com/japaniel/vocabforge/pkg/lexicon"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Fill missing translations from a glossary file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("dict")
		dictURL, _ := cmd.Flags().GetString("dict-url")
		if path == "" {
			return fmt.Errorf("--dict is required")
		}

		ctx := cmd.Context()
		a, err := setup(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		if dictURL != "" {
			if err := lexicon.Ensure(ctx, path, dictURL); err != nil {
				return fmt.Errorf("download glossary: %w", err)
			}
		}
		entries, err := dictionary.LoadGlossary(path)
		if err != nil {
			return fmt.Errorf("load glossary: %w", err)
		}
		a.log.WithField("entries", len(entries)).Info("glossary loaded")

		count, err := dictionary.NewImporter(a.store, entries, a.log).ProcessUpdates(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %d words.\n", count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(enrichCmd)

	enrichCmd.Flags().String("dict", "", "path to the glossary JSON file")
	enrichCmd.Flags().String("dict-url", "", "download the glossary from this URL when the file is missing")
}
