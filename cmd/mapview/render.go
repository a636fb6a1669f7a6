package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ha1tch/mapview/pkg/listtable"
	"github.com/ha1tch/mapview/pkg/mapfile"
	"github.com/ha1tch/mapview/pkg/mapper"
	"github.com/ha1tch/mapview/pkg/mapview"
	"github.com/ha1tch/mapview/pkg/surface"
)

type renderOptions struct {
	kind      mapview.Kind
	width     int
	height    int
	filterSrc string
	filterDst string
}

// renderScene lays out m in a view of the requested kind and returns the
// settled scene with the table rows drawn in.
func renderScene(m *mapper.Model, ro renderOptions, opts mapview.Options) (*surface.Scene, error) {
	w, h := float64(ro.width), float64(ro.height)
	scene := surface.New(w, h)
	tables := listtable.Arrange(ro.kind, w, h, 0)

	v, err := mapview.New(ro.kind, mapview.Rect{Width: w, Height: h}, tables, scene, m, opts)
	if err != nil {
		return nil, err
	}
	if err := v.FilterSignals(mapper.DirOutput, ro.filterSrc); err != nil {
		return nil, fmt.Errorf("source filter: %w", err)
	}
	if err := v.FilterSignals(mapper.DirInput, ro.filterDst); err != nil {
		return nil, fmt.Errorf("destination filter: %w", err)
	}
	scene.Settle()
	drawTables(scene, tables)
	return scene, nil
}

// drawTables adds the visible table rows to the scene as boxes and labels.
func drawTables(s *surface.Scene, ts *mapview.Tables) {
	ts.Each(func(_ mapview.Role, t mapview.Table) bool {
		tbl, ok := t.(*listtable.Table)
		if !ok {
			return true
		}
		b := tbl.Bounds()
		for _, row := range tbl.Rows() {
			if row.Bottom() <= b.Top || row.Top >= b.Bottom() || row.Right() <= b.Left || row.Left >= b.Right() {
				continue
			}
			fill, text := "#2b2b2b", "#bbbbbb"
			if row.Device {
				fill, text = "#3a3a3a", "white"
			}
			box := s.Path(mapview.RectPath(row.Rect()))
			box.Attr(mapview.Attrs{}.WithFill(fill).WithStroke("#222222"))
			box.ToBack()

			c := row.Rect().Center()
			label := s.Text(c.X, c.Y+4, row.Label)
			label.Attr(mapview.Attrs{}.WithFill(text))
		}
		return true
	})
}

func renderCmd() *cobra.Command {
	var (
		output    string
		format    string
		kind      string
		width     int
		height    int
		title     string
		filterSrc string
		filterDst string
	)

	cmd := &cobra.Command{
		Use:   "render <scene>",
		Short: "Render a scene to SVG or PNG",
		Args:  cobra.ExactArgs(1),
		Example: `  mapview render patch.toml
  mapview render patch.toml -o patch.png --kind canvas
  mapview render patch.mapz --filter-dst 'cutoff|res'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			m, meta, err := mapfile.ReadFile(input)
			if err != nil {
				return err
			}

			if kind == "" {
				kind = meta.View
			}
			if kind == "" {
				kind = cfg.View.Kind
			}
			k, err := mapview.ParseKind(kind)
			if err != nil {
				return err
			}
			if width <= 0 {
				width = cfg.Export.Width
			}
			if height <= 0 {
				height = cfg.Export.Height
			}
			format, output = outputFormat(input, output, format, cfg.Export.Format)

			scene, err := renderScene(m, renderOptions{
				kind:      k,
				width:     width,
				height:    height,
				filterSrc: filterSrc,
				filterDst: filterDst,
			}, cfg.ViewOptions(logger))
			if err != nil {
				return err
			}
			if title == "" {
				title = meta.Name
			}

			if err := writeScene(scene, output, format, title, width, height); err != nil {
				return err
			}
			logger.Debug("rendered scene", "input", input, "output", output, "elements", scene.Len())
			fmt.Printf("  %s %s %s\n", statusIcon(true), output, subtle.Sprintf("(%s, %dx%d, %s view)", format, width, height, k))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: scene name with format extension)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: svg or png")
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "View kind: list, grid or canvas")
	cmd.Flags().IntVar(&width, "width", 0, "Image width")
	cmd.Flags().IntVar(&height, "height", 0, "Image height")
	cmd.Flags().StringVar(&title, "title", "", "SVG title")
	cmd.Flags().StringVar(&filterSrc, "filter-src", "", "Only show source signals matching this pattern")
	cmd.Flags().StringVar(&filterDst, "filter-dst", "", "Only show destination signals matching this pattern")
	return cmd
}

// outputFormat settles the format and output path. An explicit format wins,
// then the output extension, then the configured default.
func outputFormat(input, output, format, fallback string) (string, string) {
	if format == "" && output != "" {
		switch strings.ToLower(filepath.Ext(output)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		}
	}
	if format == "" {
		format = fallback
	}
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
	}
	return format, output
}

func writeScene(s *surface.Scene, path, format, title string, width, height int) error {
	switch format {
	case "svg":
		opts := surface.DefaultSVGOptions()
		opts.Width, opts.Height, opts.Title = width, height, title
		return os.WriteFile(path, []byte(s.SVG(opts)), 0o644)
	case "png":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		opts := surface.DefaultPNGOptions()
		opts.Width, opts.Height = width, height
		if err := s.RenderPNG(f, opts); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return fmt.Errorf("unknown output format %q", format)
}
