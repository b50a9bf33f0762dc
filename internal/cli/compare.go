package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/nainya/docdiff/internal/render"
	"github.com/nainya/docdiff/internal/server"
	"github.com/nainya/docdiff/pkg/docdiff"
	"github.com/nainya/docdiff/pkg/model"
)

func newCompareCmd(a *app) *cobra.Command {
	var exitCode bool

	cmd := &cobra.Command{
		Use:   "compare LEFT RIGHT",
		Short: "Compare two document export files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			left, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read left document: %w", err)
			}
			right, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read right document: %w", err)
			}

			var diff *model.DocumentDiff
			if a.cfg.Server.Remote != "" {
				diff, err = a.remoteDiff(cmd.Context(), string(left), string(right))
			} else {
				diff, err = a.localDiff(cmd.Context(), left, right)
			}
			if err != nil {
				return err
			}

			if err := a.renderer().Render(cmd.OutOrStdout(), diff); err != nil {
				return err
			}
			if exitCode && !diff.IsEmpty() {
				return ErrDifferencesFound
			}
			return nil
		},
	}

	addOutputFlags(cmd)
	cmd.Flags().String("remote", "", "Address of a docdiff server to compare on")
	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "Fail when the documents differ")

	return cmd
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "o", string(render.FormatText), "Output format: text, json or yaml")
	cmd.Flags().Bool("no-color", false, "Disable colors in text output")
}

func (a *app) renderer() render.Renderer {
	// Validated by config.Load
	format, _ := render.ParseFormat(a.cfg.Output.Format)
	return render.Renderer{Format: format, NoColor: a.cfg.Output.NoColor}
}

func (a *app) service() (*docdiff.Service, error) {
	return docdiff.NewService(a.cfg.DiffService(), a.log, nil)
}

func (a *app) localDiff(ctx context.Context, left, right []byte) (*model.DocumentDiff, error) {
	svc, err := a.service()
	if err != nil {
		return nil, err
	}
	return svc.Diff(ctx, left, right)
}

func (a *app) remoteDiff(ctx context.Context, left, right string) (*model.DocumentDiff, error) {
	conn, err := grpc.NewClient(a.cfg.Server.Remote, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", a.cfg.Server.Remote, err)
	}
	defer conn.Close()

	return server.NewClient(conn).Diff(ctx, left, right)
}
