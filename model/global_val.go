package model

import (
	"fmt"
	"strings"
)

// 流量输出单位
type FlowUnit string

const (
	KgPerHour   FlowUnit = "kg/h"
	TonPerHour  FlowUnit = "t/h"
	KgPerSecond FlowUnit = "kg/s"
)

// 由 kg/s 换算到各输出单位的系数
var unitFactor = map[FlowUnit]float64{
	KgPerHour:   3600,
	TonPerHour:  3.6,
	KgPerSecond: 1,
}

func ParseFlowUnit(s string) (FlowUnit, error) {
	u := FlowUnit(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := unitFactor[u]; !ok {
		return "", fmt.Errorf("unknown flow unit %q", s)
	}
	return u, nil
}

// FromKgPerSecond 把 kg/s 换算为 u
func (u FlowUnit) FromKgPerSecond(q float64) float64 {
	f, ok := unitFactor[u]
	if !ok {
		f = unitFactor[KgPerHour]
	}
	return q * f
}

// 几何尺寸默认的测量温度 ℃
const DefaultReferenceTemperature = 20.0
