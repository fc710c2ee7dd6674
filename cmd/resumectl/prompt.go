package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"resume-builder/internal/resumes"
)

func newPromptCmd() *cobra.Command {
	flags := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the model prompt without calling the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			req, err := in.toRequest(false)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), resumes.BuildPrompt(req))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
