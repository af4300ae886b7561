package calculator

import (
	"math"

	"dpflow/model"
)

// 修正后的管道内径 D、节流件开孔（喉部）直径 d 以及 β，单位 m
type Geometry struct {
	PipeDiameter   float64
	ThroatDiameter float64
	Beta           float64
}

// PipeDiameterMM 管道内径 mm
func (g Geometry) PipeDiameterMM() float64 {
	return g.PipeDiameter * 1000
}

// CorrectDiameter 按线膨胀把标定温度下的直径换算到工作温度，coeff 单位 mm/(mm*℃*1.0e-6)
func CorrectDiameter(nominal, referenceTemp, coeff, actualTemp float64) float64 {
	return nominal * (1 + coeff*1e-6*(actualTemp-referenceTemp))
}

// CorrectGeometry 计算工作温度下的 D、d 和 β
func CorrectGeometry(g model.ElementGeometry, temperature float64) (Geometry, error) {
	if !(g.PipeDiameter > 0) || math.IsInf(g.PipeDiameter, 0) {
		return Geometry{}, invalidInput("pipe diameter %g m must be positive", g.PipeDiameter)
	}
	if !(g.ThroatDiameter > 0) || math.IsInf(g.ThroatDiameter, 0) {
		return Geometry{}, invalidInput("throat diameter %g m must be positive", g.ThroatDiameter)
	}
	D := CorrectDiameter(g.PipeDiameter, g.ReferenceTemperature, g.PipeExpansion, temperature)
	d := CorrectDiameter(g.ThroatDiameter, g.ReferenceTemperature, g.ElementExpansion, temperature)
	if !(D > 0) || !(d > 0) {
		return Geometry{}, invalidInput("corrected diameters D=%g m, d=%g m are not positive", D, d)
	}
	beta := d / D
	if beta >= 1 {
		return Geometry{}, invalidInput("beta %g must be below 1", beta)
	}
	return Geometry{PipeDiameter: D, ThroatDiameter: d, Beta: beta}, nil
}
