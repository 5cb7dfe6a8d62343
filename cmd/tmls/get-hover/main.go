package get_hover

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tmls/pkg/app"
	"github.com/walteh/tmls/pkg/document"
	"github.com/walteh/tmls/pkg/hover"
)

var ErrNoHover = errors.Base("no tm component on line")

type Handler struct {
	filePath string
	line     int
	html     bool

	fs  afero.Fs
	out io.Writer
}

func NewGetHoverCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs(), out: os.Stdout}

	cmd := &cobra.Command{
		Use:   "get-hover [file-path] [line]",
		Short: "print the hover document for a zero-based line",
	}

	cmd.Args = cobra.ExactArgs(2)

	cmd.Flags().BoolVar(&me.html, "html", false, "render the hover as HTML")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.filePath = args[0]
		var err error
		me.line, err = strconv.Atoi(args[1])
		if err != nil {
			return errors.Errorf("invalid line number: %w", err)
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

	line, ok := doc.LineAt(me.line)
	if !ok {
		return errors.Errorf("line %d out of range in %s", me.line, me.filePath)
	}

	md, ok := a.Hovers.Render(ctx, line)
	if !ok {
		return errors.WithDetails(ErrNoHover, "line", me.line, "file", me.filePath)
	}

	if me.html {
		md, err = hover.RenderHTML(md)
		if err != nil {
			return err
		}
	}

	if _, err := fmt.Fprint(me.out, md); err != nil {
		return errors.Errorf("writing hover: %w", err)
	}

	return nil
}
