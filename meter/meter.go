package meter

import (
	"fmt"
	"os"
	"sort"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"dpflow/model"
)

// 仪表台账文件结构
type catalogYAML struct {
	Meters []meterYAML `yaml:"meters"`
}

type meterYAML struct {
	Tag                  string   `yaml:"tag"`
	Description          string   `yaml:"description,omitempty"`
	Kind                 string   `yaml:"kind"`
	Taps                 string   `yaml:"taps,omitempty"`
	Correction           float64  `yaml:"correction,omitempty"`
	PipeDiameter         float64  `yaml:"pipe_diameter"`
	ThroatDiameter       float64  `yaml:"throat_diameter"`
	ReferenceTemperature *float64 `yaml:"reference_temperature,omitempty"`
	PipeExpansion        float64  `yaml:"pipe_expansion,omitempty"`
	ElementExpansion     float64  `yaml:"element_expansion,omitempty"`
	Phase                string   `yaml:"phase,omitempty"`
	Kappa                float64  `yaml:"kappa,omitempty"`
}

// Meter 现场一台差压流量计：节流件型式、几何尺寸和默认工质
type Meter struct {
	Tag         string                `json:"tag"`
	Description string                `json:"description,omitempty"`
	Kind        model.ElementKind     `json:"kind"`
	Geometry    model.ElementGeometry `json:"geometry"`
	Phase       model.Phase           `json:"phase"`
	Kappa       float64               `json:"kappa,omitempty"`
}

// Request 用实时的压力、温度和差压组成一次计算请求
func (m *Meter) Request(pressureMPa, temperatureC, dpKPa float64) model.FlowRequest {
	return model.FlowRequest{
		Kind: m.Kind,
		Process: model.ProcessState{
			PressureMPa:  pressureMPa,
			TemperatureC: temperatureC,
			Phase:        m.Phase,
		},
		Geometry:                m.Geometry,
		DifferentialPressureKPa: dpKPa,
		IsentropicExponent:      m.Kappa,
	}
}

// Catalog 只读的仪表台账，按位号索引
type Catalog struct {
	meters map[string]*Meter
}

func (c *Catalog) Get(tag string) (*Meter, bool) {
	if c == nil {
		return nil, false
	}
	m, ok := c.meters[tag]
	return m, ok
}

// List 按位号排序
func (c *Catalog) List() []*Meter {
	if c == nil {
		return nil
	}
	list := make([]*Meter, 0, len(c.meters))
	for _, m := range c.meters {
		list = append(list, m)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Tag < list[j].Tag })
	return list
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.meters)
}

func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read meter file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.WithFields(log.Fields{
		"file":   path,
		"meters": c.Len(),
	}).Info("加载仪表台账")
	return c, nil
}

func Parse(data []byte) (*Catalog, error) {
	var y catalogYAML
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	c := &Catalog{meters: make(map[string]*Meter, len(y.Meters))}
	for i := range y.Meters {
		m, err := convertMeter(&y.Meters[i])
		if err != nil {
			return nil, fmt.Errorf("meter #%d: %w", i+1, err)
		}
		if _, dup := c.meters[m.Tag]; dup {
			return nil, fmt.Errorf("duplicate meter tag %q", m.Tag)
		}
		c.meters[m.Tag] = m
	}
	return c, nil
}

func convertMeter(y *meterYAML) (*Meter, error) {
	if y.Tag == "" {
		return nil, fmt.Errorf("missing tag")
	}
	family, err := model.ParseFamily(y.Kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", y.Tag, err)
	}
	kind := model.ElementKind{Family: family}
	switch family {
	case model.OrificePlate:
		if y.Taps == "" {
			return nil, fmt.Errorf("%s: orifice plate needs taps", y.Tag)
		}
		if kind.Taps, err = model.ParseTapConfiguration(y.Taps); err != nil {
			return nil, fmt.Errorf("%s: %w", y.Tag, err)
		}
	case model.ASMELowBetaNozzle:
		kind.CorrectionTerm = y.Correction
	}

	phase := model.PhaseLiquid
	if y.Phase != "" {
		if phase, err = model.ParsePhase(y.Phase); err != nil {
			return nil, fmt.Errorf("%s: %w", y.Tag, err)
		}
	}
	if phase == model.PhaseSteam && !(y.Kappa > 1) {
		return nil, fmt.Errorf("%s: steam meter needs kappa > 1", y.Tag)
	}
	if !(y.PipeDiameter > 0) || !(y.ThroatDiameter > 0) || y.ThroatDiameter >= y.PipeDiameter {
		return nil, fmt.Errorf("%s: bad diameters D=%g d=%g", y.Tag, y.PipeDiameter, y.ThroatDiameter)
	}

	refT := model.DefaultReferenceTemperature
	if y.ReferenceTemperature != nil {
		refT = *y.ReferenceTemperature
	}
	return &Meter{
		Tag:         y.Tag,
		Description: y.Description,
		Kind:        kind,
		Geometry: model.ElementGeometry{
			PipeDiameter:         y.PipeDiameter,
			ThroatDiameter:       y.ThroatDiameter,
			ReferenceTemperature: refT,
			PipeExpansion:        y.PipeExpansion,
			ElementExpansion:     y.ElementExpansion,
		},
		Phase: phase,
		Kappa: y.Kappa,
	}, nil
}
