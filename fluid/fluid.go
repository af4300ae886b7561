// Package fluid 提供水和水蒸汽的物性（密度、动力粘度、饱和温度）。
// 物性由外部数据表给出，这里只做查表和插值，不包含水蒸汽性质公式。
package fluid

import (
	"errors"
	"fmt"

	"dpflow/model"
)

// 物性参数
type Properties struct {
	Density   float64 `json:"density"`   // kg/m3
	Viscosity float64 `json:"viscosity"` // 动力粘度 Pa*s
}

// Provider 物性提供者，压力单位 MPa（绝压），温度单位 ℃
type Provider interface {
	Properties(pressureMPa, temperatureC float64, phase model.Phase) (Properties, error)
	SaturationTemperature(pressureMPa float64) (float64, error)
}

// 查询点超出物性表范围
var ErrOutOfRange = errors.New("outside property table")

// PhaseFor 根据饱和温度判断工质状态，低于饱和温度按水处理。
// 温度测量有误差时工质状态不能单纯由 T 和饱和温度判断，此时应由调用方直接给出。
func PhaseFor(p Provider, pressureMPa, temperatureC float64) (model.Phase, error) {
	ts, err := p.SaturationTemperature(pressureMPa)
	if err != nil {
		return 0, fmt.Errorf("saturation temperature: %w", err)
	}
	if temperatureC < ts {
		return model.PhaseLiquid, nil
	}
	return model.PhaseSteam, nil
}
