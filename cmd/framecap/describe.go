package main

import (
	"fmt"
	"io"

	"github.com/gogpu/gputypes"
	"github.com/spf13/cobra"

	"github.com/gogpu/framecap"
	"github.com/gogpu/framecap/internal/config"
)

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Print the render target descriptor for the configured scene",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			size := gputypes.Extent3D{Width: cfg.Scene.Width, Height: cfg.Scene.Height, DepthOrArrayLayers: 1}
			describe(cmd.OutOrStdout(), framecap.RenderTargetDescriptor(size))
			return nil
		},
	}
}

func describe(w io.Writer, d framecap.TextureDescriptor) {
	label := d.Label
	if label == "" {
		label = "(none)"
	}
	fmt.Fprintf(w, "label:        %s\n", label)
	fmt.Fprintf(w, "size:         %dx%dx%d\n", d.Size.Width, d.Size.Height, d.Size.DepthOrArrayLayers)
	fmt.Fprintf(w, "dimension:    %v\n", d.Dimension)
	fmt.Fprintf(w, "format:       %v\n", d.Format)
	fmt.Fprintf(w, "mip levels:   %d\n", d.MipLevelCount)
	fmt.Fprintf(w, "samples:      %d\n", d.SampleCount)
	fmt.Fprintf(w, "usage:        %#x\n", uint32(d.Usage))
	fmt.Fprintf(w, "view formats: %d\n", len(d.ViewFormats))
	fmt.Fprintf(w, "bytes/pixel:  %d\n", d.BytesPerPixel())
}
