package main

import (
	"errors"
	"os"
	"time"

	"github.com/Carmen-Shannon/webray-go/common"
	"github.com/Carmen-Shannon/webray-go/engine"
	"github.com/Carmen-Shannon/webray-go/engine/renderer"
	"github.com/Carmen-Shannon/webray-go/engine/renderer/binding"
	"github.com/spf13/cobra"
)

type renderFlags struct {
	scene       string
	out         string
	kernel      string
	software    bool
	profile     bool
	pollTimeout time.Duration
}

func newRenderCommand() *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a scene description to an image file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(f)
		},
	}
	cmd.Flags().StringVar(&f.scene, "scene", "", "scene description file (.json, .yaml, .yml or .toml)")
	cmd.Flags().StringVar(&f.out, "out", "output.png", "output image (.png, .bmp, .tif or .tiff)")
	cmd.Flags().StringVar(&f.kernel, "kernel", "", "custom WGSL kernel, validated against the binding contract")
	cmd.Flags().BoolVar(&f.software, "software", false, "use the software fallback adapter")
	cmd.Flags().BoolVar(&f.profile, "profile", true, "log render phase metrics")
	cmd.Flags().DurationVar(&f.pollTimeout, "poll-timeout", renderer.DefaultPollTimeout, "maximum wait for one GPU submission, 0 waits forever")
	_ = cmd.MarkFlagRequired("scene")
	return cmd
}

func runRender(f renderFlags) error {
	opts := []renderer.RendererBuilderOption{
		renderer.WithForceSoftwareRenderer(f.software),
		renderer.WithPollTimeout(f.pollTimeout),
		renderer.WithFatalErrorHandler(exitOnDeviceError),
	}
	if f.kernel != "" {
		k, err := binding.LoadKernel(f.kernel)
		if err != nil {
			return err
		}
		opts = append(opts, renderer.WithKernelShader(k))
	}

	e, err := engine.NewEngine(
		engine.WithProfiling(f.profile),
		engine.WithRendererOptions(opts...),
	)
	if err != nil {
		return err
	}
	defer e.Release()

	err = e.RenderFile(f.scene, f.out)
	var readbackErr *common.ReadbackError
	if errors.As(err, &readbackErr) {
		common.Logger().Error("image could not be read back", "err", err)
	}
	return err
}

// exitOnDeviceError ends the process on a device error; the GPU state cannot be trusted afterwards.
func exitOnDeviceError(err *common.DeviceError) {
	common.Logger().Error("fatal device error", "op", err.Op, "err", err.Err)
	os.Exit(2)
}
