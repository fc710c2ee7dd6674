package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"resume-builder/internal/resumes"
)

func newGenerateCmd(root *rootOptions) *cobra.Command {
	flags := &requestFlags{}
	var outDir string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the resume and write AI_Resume.pdf and AI_Resume.docx",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			in, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			req, err := in.toRequest(true)
			if err != nil {
				if resumes.KindOf(err) == resumes.KindValidation {
					fmt.Fprintln(cmd.ErrOrStderr(), resumes.DisplayMessage(err))
				}
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client, err := newClient(ctx, cfg)
			if err != nil {
				return err
			}
			svc := &resumes.Service{LLM: client}

			res, err := svc.Generate(ctx, req)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), resumes.DisplayMessage(err))
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "AI-Generated Resume")
			fmt.Fprintln(out)
			fmt.Fprintln(out, res.Text)

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			for _, art := range res.Artifacts {
				path := filepath.Join(outDir, art.FileName())
				if err := os.WriteFile(path, art.Bytes, 0o644); err != nil {
					res.Errors = append(res.Errors, &resumes.Error{Kind: resumes.KindSerialization, Op: "write " + string(art.Format), Format: art.Format, Err: err})
					continue
				}
				fmt.Fprintf(out, "%s: %s\n", art.Label(), path)
			}
			for _, e := range res.Errors {
				fmt.Fprintln(cmd.ErrOrStderr(), resumes.DisplayMessage(e))
			}
			if len(res.Errors) > 0 {
				return errors.New("some documents could not be written")
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory for the generated files")
	return cmd
}
