package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"resume-builder/internal/bootstrap"
	"resume-builder/internal/extract"
	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/storage/object"
)

func newInspectCmd(root *rootOptions) *cobra.Command {
	var (
		generationID string
		format       string
	)
	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Print the text of a generated PDF or Word file",
		Long:  "Print the text of a generated document, either from a local file or from the configured object store by generation id.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			var (
				text string
				err  error
			)
			switch {
			case len(args) == 1:
				data, readErr := os.ReadFile(filepath.Clean(args[0]))
				if readErr != nil {
					return fmt.Errorf("read file: %w", readErr)
				}
				text, err = extract.TextFromBytes(ctx, data, args[0])
			case generationID != "":
				f, ok := resumes.ParseFormat(format)
				if !ok {
					return fmt.Errorf("unknown format %q", format)
				}
				cfg, cfgErr := root.loadConfig()
				if cfgErr != nil {
					return cfgErr
				}
				store, storeErr := bootstrap.BuildStore(ctx, cfg)
				if storeErr != nil {
					return storeErr
				}
				key, keyErr := object.GenerationKey(generationID, f.FileName())
				if keyErr != nil {
					return keyErr
				}
				text, err = extract.Text(ctx, store, key)
			default:
				return errors.New("pass a file or --generation")
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVar(&generationID, "generation", "", "generation id to read from the object store")
	cmd.Flags().StringVar(&format, "format", string(resumes.FormatDocx), "artifact format with --generation: pdf or docx")
	return cmd
}
