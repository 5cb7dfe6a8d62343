package serve_lsp

import (
	"context"
	"os"

	"github.com/creachadair/jrpc2"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tmls/pkg/app"
	"github.com/walteh/tmls/pkg/lsp"
)

type Handler struct {
	version     string
	forwardLogs bool
}

func NewServeLSPCommand(version string) *cobra.Command {
	me := &Handler{version: version}

	cmd := &cobra.Command{
		Use:   "serve-lsp",
		Short: "start the language server on stdin/stdout",
	}

	cmd.Flags().BoolVar(&me.forwardLogs, "forward-logs", true, "send logs to the client as window/logMessage")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		dir, err := os.Getwd()
		if err != nil {
			return errors.Errorf("getting working directory: %w", err)
		}

		fs := afero.NewOsFs()

		ctx, a, err := app.Load(cmd.Context(), fs, dir, cmd.Flags(), os.Stderr, false)
		if err != nil {
			return err
		}

		return me.Run(ctx, fs, a)
	}

	return cmd
}

type RPCLogger struct {
}

func (me *RPCLogger) LogRequest(ctx context.Context, req *jrpc2.Request) {
	zerolog.Ctx(ctx).Trace().Str("rpc_params", req.ParamString()).Str("rpc_id", req.ID()).Str("rpc_method", req.Method()).Msg("client request")
}

func (me *RPCLogger) LogResponse(ctx context.Context, res *jrpc2.Response) {
	zerolog.Ctx(ctx).Trace().Str("rpc_result", res.ResultString()).Str("rpc_id", res.ID()).Msg("server response")
}

func (me *Handler) Run(ctx context.Context, fs afero.Fs, a *app.App) error {
	server := lsp.NewServer(a.Completions, a.Hovers,
		lsp.WithVersion(me.version),
		lsp.WithFs(fs),
	)

	opts := &jrpc2.ServerOptions{
		RPCLog: &RPCLogger{},
	}

	instance := server.BuildServerInstance(ctx, opts, me.forwardLogs)

	zerolog.Ctx(ctx).Info().Str("version", me.version).Msg("serving language server on stdio")

	if err := instance.StartAndWait(os.Stdin, os.Stdout); err != nil {
		return errors.Errorf("error running language server: %w", err)
	}

	return nil
}
