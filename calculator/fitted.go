package calculator

import (
	"math"

	"dpflow/model"
)

// SolveFixedCoefficient 非标准（多孔）孔板，流出系数 c 由实流标定给出，不迭代。
// 可膨胀性系数按孔板公式计算，压比同样要求 >= 0.75。
func (s *Solver) SolveFixedCoefficient(req model.FlowRequest, c float64) (model.SolveResult, error) {
	if !(c > 0) || math.IsInf(c, 0) {
		return model.SolveResult{}, invalidInput("discharge coefficient %g must be positive", c)
	}
	req.Kind = model.Orifice(req.Kind.Taps)
	if err := validate(req); err != nil {
		return model.SolveResult{}, err
	}
	geo, err := CorrectGeometry(req.Geometry, req.Process.TemperatureC)
	if err != nil {
		return model.SolveResult{}, err
	}
	if req.DifferentialPressureKPa == 0 {
		return model.SolveResult{Unit: s.cfg.FlowUnit, DischargeCoefficient: c, Expansibility: 1, Beta: geo.Beta}, nil
	}
	st, err := s.prepare(req, geo)
	if err != nil {
		return model.SolveResult{}, err
	}
	re := st.a * c
	q := math.Pi * st.props.Viscosity * st.dRef * re / 4
	return model.SolveResult{
		MassFlow:             s.cfg.FlowUnit.FromKgPerSecond(q),
		Unit:                 s.cfg.FlowUnit,
		DischargeCoefficient: c,
		Reynolds:             re,
		Expansibility:        st.y,
		Beta:                 geo.Beta,
	}, nil
}

// MultiHoleOrificeFlow 多孔孔板的现场公式，结果单位 kg/h：
// Q = π/4*sqrt(2)*3.6e-3*sqrt(1000) * C/sqrt(1-β⁴) * d² * Y * sqrt(ρ*ΔP)，d 单位 mm，ΔP 单位 kPa
func MultiHoleOrificeFlow(c, beta, boreMM, y, density, dpKPa float64) (float64, error) {
	switch {
	case !(c > 0):
		return 0, invalidInput("discharge coefficient %g must be positive", c)
	case !(beta > 0 && beta < 1):
		return 0, invalidInput("diameter ratio %g must be in (0, 1)", beta)
	case !(boreMM > 0):
		return 0, invalidInput("bore diameter %g mm must be positive", boreMM)
	case !(y > 0 && y <= 1):
		return 0, invalidInput("expansibility %g must be in (0, 1]", y)
	case !(density > 0):
		return 0, invalidInput("density %g kg/m3 must be positive", density)
	case !(dpKPa >= 0):
		return 0, invalidInput("differential pressure %g kPa must be non-negative", dpKPa)
	}
	k := math.Pi / 4 * math.Sqrt2 * 3.6e-3 * math.Sqrt(1000) // 0.1264465
	return k * c / math.Sqrt(1-math.Pow(beta, 4)) * boreMM * boreMM * y * math.Sqrt(density*dpKPa), nil
}

// FittedOrificeFlow 标准孔板的拟合公式 m = k*d²*α*ε*sqrt(ΔP*1000*ρ)/1000，
// 没有 ISO 5167 迭代计算准确，用于现场快速估算。
// k 为计算公式系数，d 单位 mm，ΔP 单位 kPa，ρ 单位 kg/m3，结果单位由 k 决定。
func FittedOrificeFlow(k, boreMM, alpha, epsilon, dpKPa, density float64) (float64, error) {
	if !(boreMM > 0) {
		return 0, invalidInput("bore diameter %g mm must be positive", boreMM)
	}
	if !(dpKPa >= 0) {
		return 0, invalidInput("differential pressure %g kPa must be non-negative", dpKPa)
	}
	if !(density > 0) {
		return 0, invalidInput("density %g kg/m3 must be positive", density)
	}
	m := k * boreMM * boreMM * alpha * epsilon * math.Sqrt(dpKPa*1000*density)
	return m / 1000, nil
}
