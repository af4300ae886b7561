package calculator

import (
	"testing"

	"gopkg.in/ini.v1"

	"dpflow/model"
)

func TestLoadConfig(t *testing.T) {
	if got := LoadConfig(nil); got != DefaultConfig() {
		t.Errorf("LoadConfig(nil) = %+v, want defaults", got)
	}

	file, err := ini.Load([]byte(`
[solver]
MaxIterations = 50
Tolerance = 1e-12
FlowUnit = t/h
VenturiExpansibility = unity
Workers = 2
`))
	if err != nil {
		t.Fatal(err)
	}
	cfg := LoadConfig(file)
	want := Config{
		MaxIterations:        50,
		Tolerance:            1e-12,
		FlowUnit:             model.TonPerHour,
		VenturiExpansibility: VenturiUnity,
		HistoryLength:        8,
		Workers:              2,
	}
	if cfg != want {
		t.Errorf("LoadConfig = %+v, want %+v", cfg, want)
	}
}

func TestLoadConfig_Fallback(t *testing.T) {
	file, err := ini.Load([]byte(`
[solver]
MaxIterations = -3
Tolerance = abc
FlowUnit = gallons
VenturiExpansibility = maybe
Workers = 0
`))
	if err != nil {
		t.Fatal(err)
	}
	cfg := LoadConfig(file)
	def := DefaultConfig()
	if cfg.MaxIterations != def.MaxIterations || cfg.Tolerance != def.Tolerance {
		t.Errorf("iteration settings = %d, %g", cfg.MaxIterations, cfg.Tolerance)
	}
	if cfg.FlowUnit != def.FlowUnit || cfg.VenturiExpansibility != def.VenturiExpansibility {
		t.Errorf("unit = %q, venturi = %q", cfg.FlowUnit, cfg.VenturiExpansibility)
	}
	if cfg.Workers != 1 {
		t.Errorf("Workers = %d, want 1", cfg.Workers)
	}

	empty, err := ini.Load([]byte(""))
	if err != nil {
		t.Fatal(err)
	}
	if got := LoadConfig(empty); got != def {
		t.Errorf("empty file = %+v, want defaults", got)
	}
}
