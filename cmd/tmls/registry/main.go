package registry

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/tmls/pkg/app"
	"github.com/walteh/tmls/pkg/diff"
	tmregistry "github.com/walteh/tmls/pkg/registry"
	"github.com/walteh/tmls/pkg/registry/remote"
)

func NewRegistryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "inspect the component registry",
	}

	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newPrefetchCommand())

	return cmd
}

func load(cmd *cobra.Command) (context.Context, *app.App, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, nil, errors.Errorf("getting working directory: %w", err)
	}
	return app.Load(cmd.Context(), afero.NewOsFs(), dir, cmd.Flags(), os.Stderr, !color.NoColor)
}

type validateHandler struct {
	out io.Writer
}

func newValidateCommand() *cobra.Command {
	me := &validateHandler{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "check that every key resolves and every component is displayable",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx, a, err := load(cmd)
		if err != nil {
			return err
		}
		me.out = cmd.OutOrStdout()
		return me.Run(ctx, a.Registry)
	}

	return cmd
}

func (me *validateHandler) Run(ctx context.Context, reg *tmregistry.Registry) error {
	err := reg.Validate()
	problems := multierr.Errors(err)

	for _, p := range problems {
		fmt.Fprintf(me.out, "✗ %s\n", p)
	}

	if len(problems) > 0 {
		return errors.Errorf("registry has %d problems: %w", len(problems), err)
	}

	zerolog.Ctx(ctx).Debug().Int("keys", len(reg.Keys())).Msg("registry validated")
	fmt.Fprintf(me.out, "ok: %d components, %d tag names\n", len(reg.Descriptors()), len(reg.Keys()))
	return nil
}

type prefetchHandler struct {
	concurrency int
	showDiff    bool
	out         io.Writer
}

func newPrefetchCommand() *cobra.Command {
	me := &prefetchHandler{}

	cmd := &cobra.Command{
		Use:   "prefetch [component...]",
		Short: "fetch components from the documentation site and check that they parse",
	}

	cmd.Flags().IntVar(&me.concurrency, "concurrency", 4, "number of pages fetched at once")
	cmd.Flags().BoolVar(&me.showDiff, "diff", false, "print how each fetched component differs from the built-in table")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx, a, err := load(cmd)
		if err != nil {
			return err
		}
		me.out = cmd.OutOrStdout()

		fetcher := a.Fetcher
		if fetcher == nil {
			fetcher = remote.NewFetcher(a.Config.MirrorURLs(), a.Config.Docs.Timeout)
		}

		names := args
		if len(names) == 0 {
			names = a.Registry.Descriptors()
		}

		return me.Run(ctx, a.Registry, fetcher, names)
	}

	return cmd
}

type prefetchResult struct {
	name string
	desc *tmregistry.Descriptor
	err  error
}

// Run fetches every name and reports all failures together.
func (me *prefetchHandler) Run(ctx context.Context, reg *tmregistry.Registry, fetcher tmregistry.Fetcher, names []string) error {
	results := make([]prefetchResult, len(names))

	g, gctx := errgroup.WithContext(ctx)
	if me.concurrency > 0 {
		g.SetLimit(me.concurrency)
	}

	for i, name := range names {
		g.Go(func() error {
			d, err := fetcher.Fetch(gctx, name)
			results[i] = prefetchResult{name: name, desc: d, err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return errors.Errorf("prefetching components: %w", err)
	}

	var errs error
	for _, r := range results {
		if r.err != nil {
			errs = multierr.Append(errs, errors.Errorf("%s: %w", r.name, r.err))
			fmt.Fprintf(me.out, "✗ %s: %s\n", r.name, r.err)
			continue
		}

		fmt.Fprintf(me.out, "✓ %s (%s)\n", r.name, r.desc.Title)

		if !me.showDiff {
			continue
		}
		if static, ok := reg.Lookup(r.name); ok {
			if d := diff.Exported(static, r.desc); d != "" {
				fmt.Fprintln(me.out, d)
			}
		}
	}

	if errs != nil {
		return errors.Errorf("%d of %d components failed: %w", len(multierr.Errors(errs)), len(names), errs)
	}
	return nil
}
