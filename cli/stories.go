package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/richinex/tinytales/config"
	"github.com/richinex/tinytales/generator"
	"github.com/richinex/tinytales/llm"
	"github.com/richinex/tinytales/storage"
	"github.com/richinex/tinytales/story"
)

// GenerateOptions controls the generate command.
type GenerateOptions struct {
	Save   bool
	NoSeed bool
	// Raw prints the model output as received instead of the parsed pages.
	Raw bool
	// Spinner shows progress while the model is working.
	Spinner bool
}

// Generate produces one story, prints it and optionally saves it.
func Generate(ctx context.Context, app *App, params story.Parameters, opts GenerateOptions) error {
	gen := app.Generator(nil, !opts.NoSeed)

	stop := func() {}
	if opts.Spinner {
		stop = startSpinner(app.Printer.err, fmt.Sprintf("Writing a %s story with %s", params.Genre, app.ProviderName))
	}
	out, err := gen.GenerateStory(ctx, params)
	stop()
	if err != nil {
		return app.fail(err)
	}

	if opts.Raw {
		fmt.Fprintln(app.out(), out.Result.RawText)
	} else {
		printStory(app, out.Record)
	}
	warnDuplicate(app, out)

	if !opts.Save {
		return nil
	}
	id, err := app.Store.Save(ctx, out.Record)
	if err != nil {
		return app.fail(err)
	}
	app.Printer.Success("Saved story %s", id)
	return nil
}

func warnDuplicate(app *App, out *generator.Outcome) {
	if !out.Duplicate.IsDuplicate || out.Duplicate.Score == nil {
		return
	}
	app.Printer.Warning("This story is very similar to one generated earlier (similarity %.2f). Consider generating again.",
		*out.Duplicate.Score)
}

// printStory writes the title and every page.
func printStory(app *App, r story.Record) {
	w := app.out()
	title := r.Metadata.Title
	fmt.Fprintf(w, "\n%s\n%s\n", app.Printer.Bold(title), strings.Repeat("=", len([]rune(title))))
	for _, p := range r.Pages {
		fmt.Fprintf(w, "\n%s\n%s\n", app.Printer.Bold(fmt.Sprintf("Page %d", p.PageNumber)), p.Content)
	}
	fmt.Fprintln(w)
}

// List prints stored stories matching f as a table.
func List(ctx context.Context, app *App, f storage.Filter) error {
	records, err := app.Store.Filter(ctx, f)
	if err != nil {
		return app.fail(err)
	}
	if len(records) == 0 {
		app.Printer.Info("No stories found.")
		return nil
	}
	if err := renderStoryTable(app.out(), records); err != nil {
		return app.fail(err)
	}
	app.Printer.Print("\n%d stories", len(records))
	return nil
}

// Show prints one stored story with its metadata.
func Show(ctx context.Context, app *App, ref string) error {
	r, err := lookup(ctx, app, ref)
	if err != nil {
		return app.fail(err)
	}

	m := r.Metadata
	w := app.out()
	fmt.Fprintf(w, "%s %s\n", app.Printer.Dim("ID:"), r.ID)
	fmt.Fprintf(w, "%s %s\n", app.Printer.Dim("Genre:"), m.Genre)
	fmt.Fprintf(w, "%s %s\n", app.Printer.Dim("Character:"), m.CharacterType)
	fmt.Fprintf(w, "%s %s\n", app.Printer.Dim("Age Group:"), m.AgeGroup)
	fmt.Fprintf(w, "%s %d of %d requested\n", app.Printer.Dim("Pages:"), m.TotalPages, m.PageCountRequested)
	fmt.Fprintf(w, "%s %s\n", app.Printer.Dim("Created:"), m.CreatedAt.Local().Format(time.DateTime))
	if m.Description != "" {
		fmt.Fprintf(w, "%s %s\n", app.Printer.Dim("Description:"), m.Description)
	}
	printStory(app, r)
	return nil
}

// Delete removes one stored story.
func Delete(ctx context.Context, app *App, ref string) error {
	id, err := storage.Resolve(ctx, app.Store, ref)
	if err != nil {
		return app.fail(err)
	}
	ok, err := app.Store.Delete(ctx, id)
	if err != nil {
		return app.fail(err)
	}
	if !ok {
		return app.fail(fmt.Errorf("%w: %s", storage.ErrNotFound, id))
	}
	app.Printer.Success("Deleted story %s", id)
	return nil
}

// Export writes one stored story to dir as plain text.
func Export(ctx context.Context, app *App, ref, dir string) error {
	r, err := lookup(ctx, app, ref)
	if err != nil {
		return app.fail(err)
	}
	path, err := storage.ExportText(r, dir)
	if err != nil {
		return app.fail(err)
	}
	app.Printer.Success("Exported %s to %s", r.ID, path)
	return nil
}

func lookup(ctx context.Context, app *App, ref string) (story.Record, error) {
	id, err := storage.Resolve(ctx, app.Store, ref)
	if err != nil {
		return story.Record{}, err
	}
	return app.Store.Get(ctx, id)
}

// PrintOptions lists every accepted parameter value.
func PrintOptions(p *Printer) {
	section := func(title string, values []string) {
		p.Header(title)
		for _, v := range values {
			p.Print("  %s", v)
		}
	}

	section("Genres", toStrings(story.Genres()))
	section("Characters", toStrings(story.CharacterTypes()))
	section("Age groups", toStrings(story.AgeGroups()))
	p.Header("Pages")
	p.Print("  %d to %d (default %d)", story.MinPages, story.MaxPages, story.DefaultPages)
	section("Providers", config.SupportedProviders())

	p.Header("Models")
	for _, pt := range llm.ProviderTypes() {
		models := pt.Models()
		p.Print("  %-10s %s (default), %s", pt.String(), models[0], strings.Join(models[1:], ", "))
	}
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
