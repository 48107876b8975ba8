package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/Carmen-Shannon/webray-go/engine/scene"
	"github.com/spf13/cobra"
)

func newDemoCommand() *cobra.Command {
	var (
		out  string
		seed uint64
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Write the cover scene as a scene description file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, cs := scene.CoverSettings()
			sc := scene.CoverScene(rand.New(rand.NewPCG(seed, seed)))
			desc, err := scene.Describe(sc, rs, cs)
			if err != nil {
				return err
			}
			if err := scene.Save(out, desc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d shapes, %d materials)\n", out, len(sc.Shapes()), len(sc.Materials()))
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "cover.yaml", "scene description file (.json, .yaml, .yml or .toml)")
	cmd.Flags().Uint64Var(&seed, "seed", 42, "seed for the random sphere field")
	return cmd
}
