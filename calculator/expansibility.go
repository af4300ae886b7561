package calculator

import (
	"math"

	"dpflow/model"
)

// 标准规定可膨胀性系数公式只适用于 P2/P1 >= 0.75
const MinPressureRatio = 0.75

// PressureRatio 压比 τ = (P - ΔP)/P，P 单位 MPa，ΔP 单位 kPa
func PressureRatio(pressureMPa, dpKPa float64) float64 {
	return (pressureMPa - dpKPa/1000) / pressureMPa
}

// Expansibility 计算可膨胀性系数 Y（ε）。
// 压比低于 0.75 时对任何节流件、任何工质都返回 ErrOutOfValidityRange。
// 文丘里管在蒸汽工况下采用与喷嘴相同的等熵膨胀公式。
func Expansibility(family model.Family, beta, tau, kappa float64, phase model.Phase) (float64, error) {
	if err := checkRange("pressure ratio", tau, MinPressureRatio, 1); err != nil {
		return 0, err
	}
	if phase == model.PhaseLiquid {
		return 1, nil
	}
	if !(kappa > 1) || math.IsInf(kappa, 0) {
		return 0, invalidInput("isentropic exponent %g must be greater than 1 for steam", kappa)
	}
	switch family {
	case model.OrificePlate:
		return orificeExpansibility(beta, tau, kappa), nil
	case model.ISA1932Nozzle, model.LongRadiusNozzle, model.VenturiTube, model.ASMELowBetaNozzle:
		return isentropicExpansibility(beta, tau, kappa), nil
	}
	return 0, invalidInput("unknown element family %v", family)
}

func orificeExpansibility(beta, tau, kappa float64) float64 {
	b4 := math.Pow(beta, 4)
	return 1 - (0.351+0.256*b4+0.93*b4*b4)*(1-math.Pow(tau, 1/kappa))
}

// 喷嘴和文丘里管的等熵膨胀形式，τ = 1 时取极限值 1
func isentropicExpansibility(beta, tau, kappa float64) float64 {
	if tau == 1 {
		return 1
	}
	b4 := math.Pow(beta, 4)
	t2k := math.Pow(tau, 2/kappa)
	y := kappa * t2k / (kappa - 1)
	y *= (1 - b4) / (1 - b4*t2k)
	y *= (1 - math.Pow(tau, (kappa-1)/kappa)) / (1 - tau)
	return math.Sqrt(y)
}
