package main

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mprochnow/slice2print/pkg/model"
)

// fileConfig mirrors model.SlicerConfig's user-facing fields (spec.md
// §3's enumerated SlicerConfig options); derived fields are computed by
// model.NewSlicerConfig, never read from the file.
type fileConfig struct {
	FirstLayerHeight float64 `yaml:"first_layer_height"`
	LayerHeight      float64 `yaml:"layer_height"`
	NozzleDiameter   float64 `yaml:"nozzle_diameter"`
	FilamentDiameter float64 `yaml:"filament_diameter"`
	Perimeters       int     `yaml:"perimeters"`
	TopLayers        int     `yaml:"top_layers"`
	BottomLayers     int     `yaml:"bottom_layers"`
	InfillAngle      float64 `yaml:"infill_angle"`
	InfillOverlap    float64 `yaml:"infill_overlap"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		FirstLayerHeight: 0.2,
		LayerHeight:      0.2,
		NozzleDiameter:   0.4,
		FilamentDiameter: 1.75,
		Perimeters:       2,
		TopLayers:        3,
		BottomLayers:     3,
		InfillAngle:      45,
		InfillOverlap:    20,
	}
}

// loadConfig reads a YAML config file, if path is non-empty, layering it
// over the defaults, and returns the derived model.SlicerConfig.
func loadConfig(path string) (model.SlicerConfig, error) {
	fc := defaultFileConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return model.SlicerConfig{}, err
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return model.SlicerConfig{}, err
		}
	}

	return model.NewSlicerConfig(
		fc.FirstLayerHeight, fc.LayerHeight, fc.NozzleDiameter, fc.FilamentDiameter,
		fc.Perimeters, fc.TopLayers, fc.BottomLayers,
		fc.InfillAngle, fc.InfillOverlap,
	), nil
}
