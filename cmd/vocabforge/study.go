package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/japaniel/vocabforge/pkg/srs"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Show today's review queue or grade a card",
	Long: `Without --card, prints the cards due today in the deck (the user's main
deck when --deck is not given). With --card and --grade, records a review.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetInt64("user")
		deckID, _ := cmd.Flags().GetInt64("deck")
		cardID, _ := cmd.Flags().GetInt64("card")
		gradeName, _ := cmd.Flags().GetString("grade")

		ctx := cmd.Context()
		a, err := setup(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()
		study := a.newStudy()
		out := cmd.OutOrStdout()

		if cardID != 0 {
			grade, err := srs.ParseGrade(gradeName)
			if err != nil {
				return err
			}
			card, err := study.ProcessReview(ctx, cardID, userID, grade)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Card %d: next review %s (interval %d, ease %.2f)\n",
				card.ID, card.NextReviewDate.Format("2006-01-02"), card.Interval, card.EaseFactor)
			return nil
		}

		if deckID == 0 {
			deck, err := a.store.EnsureMainDeck(ctx, userID)
			if err != nil {
				return err
			}
			deckID = deck.ID
		} else if _, err := study.GetDeck(ctx, userID, deckID); err != nil {
			return err
		}
		cards, err := study.GetCardsForReview(ctx, deckID, true)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CARD\tWORD\tLEMMA\tDUE\tINTERVAL")
		for _, c := range cards {
			lemma := "?"
			if w, err := a.store.GetWord(ctx, c.WordID); err == nil {
				lemma = w.Lemma
			}
			fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%d\n", c.ID, c.WordID, lemma, c.NextReviewDate.Format("2006-01-02"), c.Interval)
		}
		return tw.Flush()
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print a user's study statistics as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetInt64("user")
		heatmap, _ := cmd.Flags().GetBool("heatmap")

		ctx := cmd.Context()
		a, err := setup(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.newStudy().GetUserStatistics(ctx, userID)
		if err != nil {
			return err
		}
		if !heatmap {
			st.Heatmap = nil
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd, statsCmd)

	reviewCmd.Flags().Int64("user", 1, "user id")
	reviewCmd.Flags().Int64("deck", 0, "deck id (defaults to the main deck)")
	reviewCmd.Flags().Int64("card", 0, "card to grade")
	reviewCmd.Flags().String("grade", "", "again, hard, good or easy (1-4)")

	statsCmd.Flags().Int64("user", 1, "user id")
	statsCmd.Flags().Bool("heatmap", false, "include the daily review heatmap")
}
