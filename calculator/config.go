package calculator

import (
	"math"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"dpflow/model"
)

// 文丘里管蒸汽工况下可膨胀性系数的取法
const (
	VenturiIsentropic = "isentropic" // 与喷嘴相同的等熵膨胀公式
	VenturiUnity      = "unity"      // 按不可压缩处理，Y = 1
)

type Config struct {
	MaxIterations        int
	Tolerance            float64
	FlowUnit             model.FlowUnit
	VenturiExpansibility string
	HistoryLength        int // 不收敛时随错误返回的残差个数
	Workers              int // 批量计算的并发数
}

func DefaultConfig() Config {
	return Config{
		MaxIterations:        100,
		Tolerance:            1e-14,
		FlowUnit:             model.KgPerHour,
		VenturiExpansibility: VenturiIsentropic,
		HistoryLength:        8,
		Workers:              4,
	}
}

// LoadConfig 读取 [solver] 段，file 为 nil 或缺少的键取默认值
func LoadConfig(file *ini.File) Config {
	if file == nil {
		return DefaultConfig()
	}
	return loadCfg(file)
}

func loadCfg(file *ini.File) Config {
	def := DefaultConfig()
	section := file.Section("solver")
	cfg := Config{
		MaxIterations:        section.Key("MaxIterations").MustInt(def.MaxIterations),
		Tolerance:            section.Key("Tolerance").MustFloat64(def.Tolerance),
		FlowUnit:             model.FlowUnit(section.Key("FlowUnit").In(string(def.FlowUnit), []string{"kg/h", "t/h", "kg/s"})),
		VenturiExpansibility: section.Key("VenturiExpansibility").In(def.VenturiExpansibility, []string{VenturiIsentropic, VenturiUnity}),
		HistoryLength:        section.Key("HistoryLength").MustInt(def.HistoryLength),
		Workers:              section.Key("Workers").MustInt(def.Workers),
	}
	cfg.normalize()
	log.WithFields(log.Fields{
		"MaxIterations":        cfg.MaxIterations,
		"Tolerance":            cfg.Tolerance,
		"FlowUnit":             cfg.FlowUnit,
		"VenturiExpansibility": cfg.VenturiExpansibility,
		"Workers":              cfg.Workers,
	}).Info("设置计算参数")
	return cfg
}

// 非法值回退到默认值
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.MaxIterations <= 0 {
		c.MaxIterations = def.MaxIterations
	}
	if !(c.Tolerance > 0) || math.IsInf(c.Tolerance, 0) {
		c.Tolerance = def.Tolerance
	}
	if _, err := model.ParseFlowUnit(string(c.FlowUnit)); err != nil {
		c.FlowUnit = def.FlowUnit
	}
	if c.VenturiExpansibility != VenturiUnity {
		c.VenturiExpansibility = VenturiIsentropic
	}
	if c.HistoryLength <= 0 {
		c.HistoryLength = def.HistoryLength
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
}
