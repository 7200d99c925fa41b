// slice2print converts an STL mesh into a layered toolpath model and
// optionally renders each layer to SVG for inspection.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/mprochnow/slice2print/pkg/layer"
	"github.com/mprochnow/slice2print/pkg/mesh"
	"github.com/mprochnow/slice2print/pkg/model"
	"github.com/mprochnow/slice2print/pkg/svgexport"
)

var (
	configPath string
	svgDir     string
)

func main() {
	cmd := &cobra.Command{
		Use:   "slice2print <model.stl>",
		Short: "Slice an STL mesh into perimeters and infill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0])
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML slicer config (see pkg/model.SlicerConfig)")
	cmd.Flags().StringVar(&svgDir, "svg-dir", "", "If set, write one SVG per layer into this directory")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(stlPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	m, err := mesh.Load(stlPath)
	if err != nil {
		return fmt.Errorf("load mesh: %w", err)
	}

	progress := func(percent int, message string) bool {
		fmt.Printf("\r%s %3d%%", message, percent)
		return false
	}

	sm, err := model.Slice(m, cfg, progress)
	if err != nil {
		fmt.Println()
		return fmt.Errorf("slice: %w", err)
	}
	if err := sm.CreatePerimeters(progress); err != nil {
		fmt.Println()
		return fmt.Errorf("create perimeters: %w", err)
	}
	if err := sm.CreateInfill(progress); err != nil {
		fmt.Println()
		return fmt.Errorf("create infill: %w", err)
	}
	fmt.Println()

	totalInfill := lo.SumBy(sm.Layers, func(ly *layer.Layer) int { return len(ly.Infill) })
	fmt.Printf("%s: %d layers, %d infill segments\n", sm, len(sm.Layers), totalInfill)

	if svgDir != "" {
		if err := writeSVGs(sm, svgDir); err != nil {
			return fmt.Errorf("write SVGs: %w", err)
		}
	}
	return nil
}

func writeSVGs(sm *model.SlicedModel, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	opt := svgexport.Options{
		Width:   800,
		Height:  800,
		Scale:   800.0 / float64(sm.Bounds.MaxX-sm.Bounds.MinX+1),
		OffsetX: int64(sm.Bounds.MinX),
		OffsetY: int64(sm.Bounds.MinY),
	}
	for _, ly := range sm.Layers {
		path := filepath.Join(dir, fmt.Sprintf("layer_%04d.svg", ly.LayerNo))
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		svgexport.WriteLayer(f, ly, opt)
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
