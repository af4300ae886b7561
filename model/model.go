package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// 工质状态
type Phase int

const (
	PhaseLiquid Phase = iota // 水
	PhaseSteam               // 水蒸汽（过热或湿蒸汽由调用方判断）
)

var phaseNames = map[Phase]string{
	PhaseLiquid: "liquid",
	PhaseSteam:  "steam",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

func ParsePhase(s string) (Phase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "liquid", "water", "水":
		return PhaseLiquid, nil
	case "steam", "vapor", "水蒸汽":
		return PhaseSteam, nil
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

func (p Phase) MarshalText() ([]byte, error) {
	if _, ok := phaseNames[p]; !ok {
		return nil, fmt.Errorf("unknown phase %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	v, err := ParsePhase(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// 取压方式，仅对标准孔板有意义
type TapConfiguration int

const (
	CornerTaps    TapConfiguration = iota // 角接取压
	DandDHalfTaps                         // D 和 D/2 取压
	FlangeTaps                            // 法兰取压
)

var tapNames = map[TapConfiguration]string{
	CornerTaps:    "corner",
	DandDHalfTaps: "d-d/2",
	FlangeTaps:    "flange",
}

func (t TapConfiguration) String() string {
	if s, ok := tapNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TapConfiguration(%d)", int(t))
}

func ParseTapConfiguration(s string) (TapConfiguration, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "corner", "角接", "角接取压":
		return CornerTaps, nil
	case "d-d/2", "d&d/2", "dd2", "radius":
		return DandDHalfTaps, nil
	case "flange", "法兰", "法兰取压":
		return FlangeTaps, nil
	}
	return 0, fmt.Errorf("unknown tap configuration %q", s)
}

func (t TapConfiguration) MarshalText() ([]byte, error) {
	if _, ok := tapNames[t]; !ok {
		return nil, fmt.Errorf("unknown tap configuration %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *TapConfiguration) UnmarshalText(b []byte) error {
	v, err := ParseTapConfiguration(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// 节流件类型
type Family int

const (
	OrificePlate Family = iota
	ISA1932Nozzle
	LongRadiusNozzle
	VenturiTube
	ASMELowBetaNozzle
)

var familyNames = map[Family]string{
	OrificePlate:      "orifice",
	ISA1932Nozzle:     "isa1932",
	LongRadiusNozzle:  "long-radius",
	VenturiTube:       "venturi",
	ASMELowBetaNozzle: "asme-low-beta",
}

func (f Family) String() string {
	if s, ok := familyNames[f]; ok {
		return s
	}
	return fmt.Sprintf("Family(%d)", int(f))
}

func ParseFamily(s string) (Family, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for f, name := range familyNames {
		if name == key {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown element family %q", s)
}

func (f Family) MarshalText() ([]byte, error) {
	if _, ok := familyNames[f]; !ok {
		return nil, fmt.Errorf("unknown element family %d", int(f))
	}
	return []byte(f.String()), nil
}

func (f *Family) UnmarshalText(b []byte) error {
	v, err := ParseFamily(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// ElementKind 节流件，Taps 只对孔板有效，CorrectionTerm 只对 ASME 低 β 喷嘴有效
type ElementKind struct {
	Family         Family           `json:"family"`
	Taps           TapConfiguration `json:"taps,omitempty"`
	CorrectionTerm float64          `json:"correction_term,omitempty"` // ΔC = Cx_avg - 1.0054
}

func Orifice(taps TapConfiguration) ElementKind {
	return ElementKind{Family: OrificePlate, Taps: taps}
}

func ASMELowBeta(correction float64) ElementKind {
	return ElementKind{Family: ASMELowBetaNozzle, CorrectionTerm: correction}
}

func (k ElementKind) String() string {
	switch k.Family {
	case OrificePlate:
		return k.Family.String() + "(" + k.Taps.String() + ")"
	case ASMELowBetaNozzle:
		return fmt.Sprintf("%s(ΔC=%g)", k.Family, k.CorrectionTerm)
	}
	return k.Family.String()
}

// 工况
type ProcessState struct {
	PressureMPa  float64 `json:"pressure"`    // 绝对压力 MPa
	TemperatureC float64 `json:"temperature"` // ℃
	Phase        Phase   `json:"phase"`
}

// 节流件几何尺寸，直径单位 m，膨胀系数单位 mm/(mm*℃*1.0e-6)
type ElementGeometry struct {
	PipeDiameter         float64 `json:"pipe_diameter"`
	ThroatDiameter       float64 `json:"throat_diameter"`
	ReferenceTemperature float64 `json:"reference_temperature"`
	PipeExpansion        float64 `json:"pipe_expansion"`
	ElementExpansion     float64 `json:"element_expansion"`
}

// 一次流量计算请求
type FlowRequest struct {
	Kind                    ElementKind     `json:"kind"`
	Process                 ProcessState    `json:"process"`
	Geometry                ElementGeometry `json:"geometry"`
	DifferentialPressureKPa float64         `json:"dp"`    // 差压 kPa
	IsentropicExponent      float64         `json:"kappa"` // 等熵指数，仅可压缩流体需要
}

// 计算结果
type SolveResult struct {
	MassFlow             float64  `json:"mass_flow"`
	Unit                 FlowUnit `json:"unit"`
	DischargeCoefficient float64  `json:"c"`
	Reynolds             float64  `json:"re"`
	Expansibility        float64  `json:"y"`
	Beta                 float64  `json:"beta"`
	Iterations           int      `json:"iterations"`
}

// 前后端通信消息结构
type Msg struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content,omitempty"`
}
