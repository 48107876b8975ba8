package main

import (
	"fmt"

	"github.com/Carmen-Shannon/webray-go/engine/renderer/binding"
	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	var kernel string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a WGSL kernel against the binding contract",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := binding.LoadKernel(kernel)
			if err != nil {
				return err
			}
			wg := k.WorkgroupSize()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (entry point %s, workgroup %dx%dx%d)\n", kernel, k.EntryPoint(), wg[0], wg[1], wg[2])
			return nil
		},
	}
	cmd.Flags().StringVar(&kernel, "kernel", "", "WGSL kernel file")
	_ = cmd.MarkFlagRequired("kernel")
	return cmd
}
