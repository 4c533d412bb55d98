package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/justestif/go-affect-fusion/internal/config"
	"github.com/justestif/go-affect-fusion/internal/db"
	"github.com/justestif/go-affect-fusion/internal/modality/text"
)

func newLexiconCmd(load func() (*config.Config, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lexicon",
		Short: "Manage the text emotion lexicon",
	}
	cmd.AddCommand(newLexiconImportCmd(load), newLexiconStatsCmd(load))
	return cmd
}

func newLexiconImportCmd(load func() (*config.Config, error)) *cobra.Command {
	var wordColumn string

	cmd := &cobra.Command{
		Use:   "import <file.tsv>",
		Short: "Replace the stored lexicon with a TSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return fmt.Errorf("database.url is not set")
			}
			if wordColumn == "" {
				wordColumn = cfg.Lexicon.WordColumn
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening lexicon: %w", err)
			}
			defer f.Close()

			lex, err := text.LoadTSV(f, wordColumn)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			database, err := db.New(ctx, cfg.Database.URL)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.Lexicon().ReplaceAll(ctx, lex.Emotions(), lex.Entries()); err != nil {
				return fmt.Errorf("storing lexicon: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d words across %d emotions\n", lex.Len(), len(lex.Emotions()))
			return nil
		},
	}
	cmd.Flags().StringVar(&wordColumn, "word-column", "", "column holding the lookup word (defaults to lexicon.word_column)")
	return cmd
}

func newLexiconStatsCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the configured lexicon size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			lex, err := loadLexicon(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "source:   %s\nwords:    %d\nemotions: %v\n", cfg.Lexicon.Source, lex.Len(), lex.Emotions())

			if cfg.Database.URL == "" {
				return nil
			}
			database, err := db.New(cmd.Context(), cfg.Database.URL)
			if err != nil {
				return err
			}
			defer database.Close()
			stored, err := database.Lexicon().CountWords(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "stored:   %d\n", stored)
			return nil
		},
	}
}
