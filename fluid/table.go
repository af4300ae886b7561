package fluid

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/interp"

	"dpflow/model"
)

//go:embed water_steam.json
var defaultTableData []byte

// 物性表文件格式
type tableData struct {
	Name       string            `json:"name"`
	Liquid     []liquidPoint     `json:"liquid"`
	Saturation []saturationPoint `json:"saturation"`
	Steam      steamGrid         `json:"steam"`
}

type liquidPoint struct {
	Temperature float64 `json:"t"`
	Density     float64 `json:"density"`
	Viscosity   float64 `json:"viscosity"`
}

type saturationPoint struct {
	Pressure    float64 `json:"p"`
	Temperature float64 `json:"t"`
}

// 过热蒸汽物性网格，行对应压力，列对应温度
type steamGrid struct {
	Pressures    []float64   `json:"pressures"`
	Temperatures []float64   `json:"temperatures"`
	Density      [][]float64 `json:"density"`
	Viscosity    [][]float64 `json:"viscosity"`
}

// 一维分段线性曲线，记录自变量范围用于越界检查
type curve struct {
	min, max float64
	pl       interp.PiecewiseLinear
}

func newCurve(xs, ys []float64) (curve, error) {
	c := curve{}
	if len(xs) < 2 {
		return c, fmt.Errorf("need at least 2 points, got %d", len(xs))
	}
	if len(ys) != len(xs) {
		return c, fmt.Errorf("%d abscissae but %d values", len(xs), len(ys))
	}
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return c, fmt.Errorf("abscissae must be strictly increasing at %g", xs[i])
		}
	}
	if err := c.pl.Fit(xs, ys); err != nil {
		return c, err
	}
	c.min, c.max = xs[0], xs[len(xs)-1]
	return c, nil
}

func (c *curve) at(quantity string, x float64) (float64, error) {
	if math.IsNaN(x) || x < c.min || x > c.max {
		return 0, fmt.Errorf("%w: %s %g not in [%g, %g]", ErrOutOfRange, quantity, x, c.min, c.max)
	}
	return c.pl.Predict(x), nil
}

// Table 基于数据表插值的物性提供者，构造后只读，可并发使用
type Table struct {
	Name string

	liquidDensity   curve
	liquidViscosity curve
	saturation      curve

	steamPressures []float64
	steamDensity   []curve // 每个压力一条温度曲线
	steamViscosity []curve
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
	defaultErr   error
)

// Default 内置的水和水蒸汽物性表
func Default() (*Table, error) {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = Parse(defaultTableData)
	})
	return defaultTable, defaultErr
}

// LoadFile 从 json 文件读取物性表
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read property table: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.WithFields(log.Fields{
		"path": path,
		"name": t.Name,
	}).Info("加载物性表")
	return t, nil
}

// Parse 解析 json 物性表
func Parse(data []byte) (*Table, error) {
	var raw tableData
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse property table: %w", err)
	}
	t := &Table{Name: raw.Name}

	// 1. 水，按温度排序
	sort.Slice(raw.Liquid, func(i, j int) bool {
		return raw.Liquid[i].Temperature < raw.Liquid[j].Temperature
	})
	ts := make([]float64, len(raw.Liquid))
	rhos := make([]float64, len(raw.Liquid))
	mus := make([]float64, len(raw.Liquid))
	for i, p := range raw.Liquid {
		ts[i], rhos[i], mus[i] = p.Temperature, p.Density, p.Viscosity
	}
	var err error
	if t.liquidDensity, err = newCurve(ts, rhos); err != nil {
		return nil, fmt.Errorf("liquid density: %w", err)
	}
	if t.liquidViscosity, err = newCurve(ts, mus); err != nil {
		return nil, fmt.Errorf("liquid viscosity: %w", err)
	}

	// 2. 饱和线，按压力排序
	sort.Slice(raw.Saturation, func(i, j int) bool {
		return raw.Saturation[i].Pressure < raw.Saturation[j].Pressure
	})
	ps := make([]float64, len(raw.Saturation))
	tsat := make([]float64, len(raw.Saturation))
	for i, p := range raw.Saturation {
		ps[i], tsat[i] = p.Pressure, p.Temperature
	}
	if t.saturation, err = newCurve(ps, tsat); err != nil {
		return nil, fmt.Errorf("saturation line: %w", err)
	}

	// 3. 过热蒸汽网格
	g := raw.Steam
	if len(g.Pressures) < 2 || len(g.Density) != len(g.Pressures) || len(g.Viscosity) != len(g.Pressures) {
		return nil, fmt.Errorf("steam grid: %d pressures, %d density rows, %d viscosity rows",
			len(g.Pressures), len(g.Density), len(g.Viscosity))
	}
	if !sort.Float64sAreSorted(g.Pressures) {
		return nil, fmt.Errorf("steam grid: pressures must be increasing")
	}
	t.steamPressures = g.Pressures
	for i := range g.Pressures {
		rho, err := newCurve(g.Temperatures, g.Density[i])
		if err != nil {
			return nil, fmt.Errorf("steam density at %g MPa: %w", g.Pressures[i], err)
		}
		mu, err := newCurve(g.Temperatures, g.Viscosity[i])
		if err != nil {
			return nil, fmt.Errorf("steam viscosity at %g MPa: %w", g.Pressures[i], err)
		}
		t.steamDensity = append(t.steamDensity, rho)
		t.steamViscosity = append(t.steamViscosity, mu)
	}
	return t, nil
}

func (t *Table) SaturationTemperature(pressureMPa float64) (float64, error) {
	return t.saturation.at("pressure", pressureMPa)
}

// Properties 查询物性。蒸汽温度低于饱和温度时为湿蒸汽，密度取同温度下水的密度。
func (t *Table) Properties(pressureMPa, temperatureC float64, phase model.Phase) (Properties, error) {
	if !(pressureMPa > 0) {
		return Properties{}, fmt.Errorf("pressure %g MPa must be positive", pressureMPa)
	}
	switch phase {
	case model.PhaseLiquid:
		return t.liquid(temperatureC)
	case model.PhaseSteam:
		ts, err := t.SaturationTemperature(pressureMPa)
		if err != nil {
			return Properties{}, err
		}
		if temperatureC < ts {
			return t.liquid(temperatureC)
		}
		return t.steam(pressureMPa, temperatureC)
	}
	return Properties{}, fmt.Errorf("unknown phase %v", phase)
}

func (t *Table) liquid(temperatureC float64) (Properties, error) {
	rho, err := t.liquidDensity.at("liquid temperature", temperatureC)
	if err != nil {
		return Properties{}, err
	}
	mu, err := t.liquidViscosity.at("liquid temperature", temperatureC)
	if err != nil {
		return Properties{}, err
	}
	return Properties{Density: rho, Viscosity: mu}, nil
}

// 先沿温度插值，再在相邻两个压力之间线性插值
func (t *Table) steam(pressureMPa, temperatureC float64) (Properties, error) {
	ps := t.steamPressures
	if pressureMPa < ps[0] || pressureMPa > ps[len(ps)-1] {
		return Properties{}, fmt.Errorf("%w: steam pressure %g not in [%g, %g]",
			ErrOutOfRange, pressureMPa, ps[0], ps[len(ps)-1])
	}
	hi := sort.SearchFloat64s(ps, pressureMPa)
	if hi == 0 {
		hi = 1
	}
	lo := hi - 1
	w := (pressureMPa - ps[lo]) / (ps[hi] - ps[lo])

	var v [2]Properties
	for k, i := range [2]int{lo, hi} {
		rho, err := t.steamDensity[i].at("steam temperature", temperatureC)
		if err != nil {
			return Properties{}, err
		}
		mu, err := t.steamViscosity[i].at("steam temperature", temperatureC)
		if err != nil {
			return Properties{}, err
		}
		v[k] = Properties{Density: rho, Viscosity: mu}
	}
	return Properties{
		Density:   v[0].Density + w*(v[1].Density-v[0].Density),
		Viscosity: v[0].Viscosity + w*(v[1].Viscosity-v[0].Viscosity),
	}, nil
}

var _ Provider = (*Table)(nil)
