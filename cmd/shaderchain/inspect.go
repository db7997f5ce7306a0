package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alphanu1/MME4CRT-v2.0/preset"
	"github.com/alphanu1/MME4CRT-v2.0/shader"
	"github.com/alphanu1/MME4CRT-v2.0/video"
)

type inspectFlags struct {
	input    string
	viewport string
	scale    int
}

func newInspectCmd(o *options) *cobra.Command {
	f := &inspectFlags{}
	cmd := &cobra.Command{
		Use:   "inspect PRESET",
		Short: "Print the pass geometry of a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := parseSize(f.input)
			if err != nil {
				return fmt.Errorf("--input: %w", err)
			}
			screen, err := parseSize(f.viewport)
			if err != nil {
				return fmt.Errorf("--viewport: %w", err)
			}
			cfg := o.config.Video.ChainConfig()
			if cmd.Flags().Changed("scale") {
				cfg.InputScale = f.scale
			}
			vp := video.ComputeViewport(screen.Width, screen.Height, input.Width, input.Height,
				o.config.Video.PixelAspect, o.config.Video.KeepAspect)

			prog, err := preset.Load(args[0])
			if err != nil {
				return err
			}
			return writeInspect(cmd.OutOrStdout(), args[0], prog, cfg, input, vp)
		},
	}
	cmd.Flags().StringVar(&f.input, "input", "256x224", "native frame size as WxH")
	cmd.Flags().StringVar(&f.viewport, "viewport", "800x600", "screen size as WxH")
	cmd.Flags().IntVar(&f.scale, "scale", 1, "input scale (first pass texture is 256*N square)")
	return cmd
}

// writeInspect prints one row per pass of prog as it would be built for
// the given input and viewport.
func writeInspect(w io.Writer, path string, prog *shader.Program, cfg shader.Config, input shader.Size, vp shader.Viewport) error {
	links, err := shader.ComputeLinks(prog, cfg, vp)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "preset:   %s\n", path)
	fmt.Fprintf(w, "input:    %s %s\n", input, cfg.Format())
	fmt.Fprintf(w, "viewport: %s at %d,%d\n", vp.Size(), vp.X, vp.Y)
	fmt.Fprintf(w, "luts: %d  variables: %d\n\n", len(prog.Luts), len(prog.Imports.Variables))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PASS\tSOURCE\tFILTER\tSCALE X\tSCALE Y\tIN\tOUT\tTEX")
	for i, l := range links {
		p := l.Pass
		scaleX, scaleY := "viewport", "viewport"
		if p.FBO.Valid {
			scaleX, scaleY = p.FBO.X.String(), p.FBO.Y.String()
		}
		source := p.Source
		if source == "" {
			source = "(passthrough)"
		}
		out, tex := vp.Size().String(), "screen"
		if i+1 < len(links) {
			next := links[i+1]
			out = shader.Size{Width: next.OutWidth, Height: next.OutHeight}.String()
			tex = shader.Size{Width: next.TexWidth, Height: next.TexHeight}.String()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.Index, source, p.Filter, scaleX, scaleY,
			shader.Size{Width: l.OutWidth, Height: l.OutHeight}, out, tex)
	}
	return tw.Flush()
}

// parseSize parses "WxH".
func parseSize(s string) (shader.Size, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return shader.Size{}, fmt.Errorf("size %q is not WxH", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return shader.Size{}, fmt.Errorf("size %q: bad width", s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return shader.Size{}, fmt.Errorf("size %q: bad height", s)
	}
	if w <= 0 || h <= 0 {
		return shader.Size{}, fmt.Errorf("size %q must be positive", s)
	}
	return shader.Size{Width: w, Height: h}, nil
}
