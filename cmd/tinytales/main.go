// Package main provides the tinytales CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/richinex/tinytales/cli"
	"github.com/richinex/tinytales/storage"
	"github.com/richinex/tinytales/story"
)

var (
	// Global flags
	provider   string
	configPath string
	envFile    string
	verbose    bool
	noColor    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tinytales",
		Short: "Generate illustrated-book style children's stories with an LLM",
		Long: `Generate children's picture book stories from a few choices:
genre, main character, reader age and page count.

Stories are split into pages, checked against earlier output for
near-duplicates, and saved to a local story file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnvFile(envFile, cmd.Flags().Changed("env-file"))
		},
	}

	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider (gemini, groq, openai, anthropic)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML settings file overriding the environment")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logs")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(deleteCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(optionsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// loadEnvFile loads path into the environment. A missing file is only an
// error when the user named it explicitly.
func loadEnvFile(path string, explicit bool) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func options() cli.Options {
	return cli.Options{
		Provider:   provider,
		ConfigPath: configPath,
		Verbose:    verbose,
		NoColor:    noColor,
	}
}

// withApp sets up the application for one command and closes it afterwards.
func withApp(run func(ctx context.Context, app *cli.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := cli.Setup(options())
		if err != nil {
			return err
		}
		defer app.Close()
		return run(cmd.Context(), app, args)
	}
}

func generateCmd() *cobra.Command {
	var (
		genre, character, age string
		params                story.Parameters
		opts                  cli.GenerateOptions
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one story",
		Example: `  tinytales generate --genre Fantasy --character Girl --age 5-7 --pages 6
  tinytales generate --genre "Animal Stories" --description "a shy hedgehog" --moral`,
		Args: cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, app *cli.App, _ []string) error {
			var err error
			if params.Genre, err = story.ParseGenre(genre); err != nil {
				return err
			}
			if params.CharacterType, err = story.ParseCharacterType(character); err != nil {
				return err
			}
			if params.AgeGroup, err = story.ParseAgeGroup(age); err != nil {
				return err
			}
			opts.Spinner = !verbose
			return cli.Generate(ctx, app, params, opts)
		}),
	}

	cmd.Flags().StringVar(&genre, "genre", string(story.GenreAdventure), "Story genre")
	cmd.Flags().StringVar(&character, "character", string(story.CharacterBoy), "Main character type")
	cmd.Flags().StringVar(&age, "age", string(story.Age5to7), "Reader age group, e.g. 3-5")
	cmd.Flags().IntVar(&params.PageCount, "pages", story.DefaultPages, fmt.Sprintf("Number of pages (%d-%d)", story.MinPages, story.MaxPages))
	cmd.Flags().StringVar(&params.Description, "description", "", "What the story should be about")
	cmd.Flags().BoolVar(&params.IncludeMoral, "moral", false, "Include a moral lesson")
	cmd.Flags().BoolVar(&params.IncludeDialogue, "dialogue", false, "Include dialogue between characters")
	cmd.Flags().BoolVar(&params.Rhyming, "rhyming", false, "Write in rhyming verse")
	cmd.Flags().BoolVar(&opts.Save, "save", true, "Save the story")
	cmd.Flags().BoolVar(&opts.NoSeed, "no-seed", false, "Send the prompt without a variation seed")
	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "Print the model output without page parsing")

	return cmd
}

func batchCmd() *cobra.Command {
	var opts cli.BatchOptions

	cmd := &cobra.Command{
		Use:   "batch <file.toml>",
		Short: "Generate every story listed in a TOML file",
		Long: `Generate stories one after another from [[story]] tables:

  [[story]]
  genre = "Fantasy"
  character_type = "Girl"
  age_group = "5-7 years"
  page_count = 6
  description = "a dragon who is afraid of the dark"

Duplicate detection spans the whole batch.`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, app *cli.App, args []string) error {
			params, err := cli.LoadBatchFile(args[0])
			if err != nil {
				return err
			}
			opts.Progress = !verbose
			_, err = cli.Batch(ctx, app, params, opts)
			return err
		}),
	}

	cmd.Flags().BoolVar(&opts.Save, "save", true, "Save generated stories")
	cmd.Flags().BoolVar(&opts.NoSeed, "no-seed", false, "Send prompts without a variation seed")
	cmd.Flags().IntVar(&opts.RPM, "rpm", 0, "Maximum requests per minute (0 = no pacing)")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running, e.g. :2112")

	return cmd
}

func listCmd() *cobra.Command {
	var genre, character, age string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved stories",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, app *cli.App, _ []string) error {
			var (
				f   storage.Filter
				err error
			)
			if genre != "" {
				if f.Genre, err = story.ParseGenre(genre); err != nil {
					return err
				}
			}
			if character != "" {
				if f.CharacterType, err = story.ParseCharacterType(character); err != nil {
					return err
				}
			}
			if age != "" {
				if f.AgeGroup, err = story.ParseAgeGroup(age); err != nil {
					return err
				}
			}
			return cli.List(ctx, app, f)
		}),
	}

	cmd.Flags().StringVar(&genre, "genre", "", "Only stories of this genre")
	cmd.Flags().StringVar(&character, "character", "", "Only stories with this character type")
	cmd.Flags().StringVar(&age, "age", "", "Only stories for this age group")

	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id-or-prefix>",
		Short: "Print a saved story",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, app *cli.App, args []string) error {
			return cli.Show(ctx, app, args[0])
		}),
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id-or-prefix>",
		Short: "Delete a saved story",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, app *cli.App, args []string) error {
			return cli.Delete(ctx, app, args[0])
		}),
	}
}

func exportCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export <id-or-prefix>",
		Short: "Export a saved story as a text file",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, app *cli.App, args []string) error {
			return cli.Export(ctx, app, args[0], dir)
		}),
	}

	cmd.Flags().StringVar(&dir, "dir", storage.DefaultExportDir, "Directory to write into")

	return cmd
}

func optionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List accepted genres, characters, ages and providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.PrintOptions(cli.NewPrinter(os.Stdout, os.Stderr, !noColor))
			return nil
		},
	}
}
