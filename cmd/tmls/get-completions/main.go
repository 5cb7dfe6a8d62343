package get_completions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tmls/pkg/app"
	"github.com/walteh/tmls/pkg/completion"
	"github.com/walteh/tmls/pkg/document"
	"github.com/walteh/tmls/pkg/tagmatch"
)

type Handler struct {
	filePath  string
	line      int
	character int
	trigger   string
	asJSON    bool
	showTags  bool

	fs     afero.Fs
	out    io.Writer
	tagOut io.Writer
}

func NewGetCompletionsCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs(), out: os.Stdout, tagOut: os.Stderr}

	cmd := &cobra.Command{
		Use:   "get-completions [file-path] [line] [character]",
		Short: "get completions for a zero-based position in a file",
	}

	cmd.Args = cobra.ExactArgs(3)

	cmd.Flags().StringVar(&me.trigger, "trigger", "", "character that triggered the request")
	cmd.Flags().BoolVar(&me.asJSON, "json", false, "print completions as JSON")
	cmd.Flags().BoolVar(&me.showTags, "tags", false, "list every tag matched before the cursor on stderr")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.filePath = args[0]
		var err error
		me.line, err = strconv.Atoi(args[1])
		if err != nil {
			return errors.Errorf("invalid line number: %w", err)
		}
		me.character, err = strconv.Atoi(args[2])
		if err != nil {
			return errors.Errorf("invalid character number: %w", err)
		}

		dir, err := os.Getwd()
		if err != nil {
			return errors.Errorf("getting working directory: %w", err)
		}

		ctx, a, err := app.Load(cmd.Context(), me.fs, dir, cmd.Flags(), os.Stderr, !color.NoColor)
		if err != nil {
			return err
		}

		return me.Run(ctx, a)
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context, a *app.App) error {
	content, err := afero.ReadFile(me.fs, me.filePath)
	if err != nil {
		return errors.Errorf("failed to read file: %w", err)
	}

	doc := document.New(me.filePath, document.KindFromPath(me.filePath), 0, string(content))
	req := doc.RequestAt(me.line, me.character, me.trigger)

	if me.showTags {
		if err := me.writeTags(req.Before); err != nil {
			return err
		}
	}

	candidates := a.Completions.Complete(ctx, req)
	for i, c := range candidates {
		candidates[i] = completion.Resolve(c)
	}

	if me.asJSON {
		encoder := json.NewEncoder(me.out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(candidates); err != nil {
			return errors.Errorf("failed to encode completions: %w", err)
		}
		return nil
	}

	printer := pp.New()
	printer.SetOutput(me.out)
	printer.SetColoringEnabled(!color.NoColor)
	if _, err := printer.Println(candidates); err != nil {
		return errors.Errorf("failed to print completions: %w", err)
	}

	return nil
}

// writeTags lists every opening tag in before and marks the one the cursor is
// taken to be inside.
func (me *Handler) writeTags(before string) error {
	active, ok := tagmatch.Locate(before)
	for _, occ := range tagmatch.LocateAll(before) {
		mark := " "
		if ok && occ.Start == active.Start {
			mark = "*"
		}
		if _, err := fmt.Fprintf(me.tagOut, "%s %s @%d %q\n", mark, occ.Name, occ.Start, occ.Span); err != nil {
			return errors.Errorf("writing tags: %w", err)
		}
	}
	return nil
}
