package calculator

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"dpflow/deque"
	"dpflow/fluid"
	"dpflow/model"
)

// Solver 差压流量迭代求解，本身无状态，可被多个 goroutine 同时使用
type Solver struct {
	cfg   Config
	props fluid.Provider
}

func NewSolver(cfg Config, props fluid.Provider) *Solver {
	cfg.normalize()
	return &Solver{cfg: cfg, props: props}
}

func (s *Solver) Config() Config {
	return s.cfg
}

// 迭代所需的中间量
type flowState struct {
	geo   Geometry
	model CoefficientModel
	props fluid.Properties
	y     float64
	a     float64 // 迭代不变量，Re = a*C
	dRef  float64 // 雷诺数的特征长度
}

// Solve 由差压计算质量流量：
//  1. 差压为 0 直接返回 0
//  2. 修正工作温度下的 D、d、β
//  3. 查物性，计算可膨胀性系数
//  4. 以 Re = a*C 迭代流出系数，直到 |a - Re/C|/a 小于容差
func (s *Solver) Solve(req model.FlowRequest) (model.SolveResult, error) {
	if err := validate(req); err != nil {
		return model.SolveResult{}, err
	}
	geo, err := CorrectGeometry(req.Geometry, req.Process.TemperatureC)
	if err != nil {
		return model.SolveResult{}, err
	}
	if req.DifferentialPressureKPa == 0 {
		return model.SolveResult{Unit: s.cfg.FlowUnit, Expansibility: 1, Beta: geo.Beta}, nil
	}

	st, err := s.prepare(req, geo)
	if err != nil {
		return model.SolveResult{}, err
	}

	c := st.model.Seed(geo.Beta)
	iterations := 0
	if st.model.Iterative() {
		c, iterations, err = s.iterate(st, c)
		if err != nil {
			log.WithFields(log.Fields{
				"kind": req.Kind.String(),
				"beta": geo.Beta,
				"dp":   req.DifferentialPressureKPa,
			}).Warn("流出系数迭代失败: ", err)
			return model.SolveResult{}, err
		}
	} else if c, err = st.model.Coefficient(geo.Beta, 0); err != nil {
		return model.SolveResult{}, err
	}

	re := st.a * c
	q := math.Pi * st.props.Viscosity * st.dRef * re / 4 // kg/s
	res := model.SolveResult{
		MassFlow:             s.cfg.FlowUnit.FromKgPerSecond(q),
		Unit:                 s.cfg.FlowUnit,
		DischargeCoefficient: c,
		Reynolds:             re,
		Expansibility:        st.y,
		Beta:                 geo.Beta,
		Iterations:           iterations,
	}
	log.WithFields(log.Fields{
		"kind":       req.Kind.String(),
		"C":          res.DischargeCoefficient,
		"Re":         res.Reynolds,
		"Y":          res.Expansibility,
		"iterations": res.Iterations,
		"flow":       res.MassFlow,
	}).Debug("流量计算完成")
	return res, nil
}

// 选取关联式、检查适用范围、查物性并计算迭代不变量
func (s *Solver) prepare(req model.FlowRequest, geo Geometry) (flowState, error) {
	st := flowState{geo: geo}
	var err error
	if st.model, err = NewCoefficientModel(req.Kind, geo); err != nil {
		return st, err
	}
	if err = st.model.CheckGeometry(geo); err != nil {
		return st, err
	}

	p := req.Process
	if st.props, err = s.props.Properties(p.PressureMPa, p.TemperatureC, p.Phase); err != nil {
		return st, fmt.Errorf("fluid properties at %g MPa, %g ℃: %w", p.PressureMPa, p.TemperatureC, err)
	}
	if !(st.props.Density > 0) || !(st.props.Viscosity > 0) {
		return st, invalidInput("fluid properties %+v must be positive", st.props)
	}

	if st.y, err = s.expansibility(req, geo.Beta); err != nil {
		return st, err
	}

	// ASME 低 β 喷嘴的雷诺数以喉部直径为特征长度，其余以管道内径
	st.dRef = geo.PipeDiameter
	if st.model.ThroatReynolds() {
		st.dRef = geo.ThroatDiameter
	}
	d := geo.ThroatDiameter
	b4 := math.Pow(geo.Beta, 4)
	st.a = st.y * d * d * math.Sqrt(2*(req.DifferentialPressureKPa*1000)*st.props.Density/(1-b4)) /
		(st.props.Viscosity * st.dRef)
	return st, nil
}

func (s *Solver) expansibility(req model.FlowRequest, beta float64) (float64, error) {
	tau := PressureRatio(req.Process.PressureMPa, req.DifferentialPressureKPa)
	y, err := Expansibility(req.Kind.Family, beta, tau, req.IsentropicExponent, req.Process.Phase)
	if err != nil {
		return 0, err
	}
	if req.Kind.Family == model.VenturiTube && s.cfg.VenturiExpansibility == VenturiUnity {
		return 1, nil
	}
	return y, nil
}

// 不动点迭代，返回收敛后的流出系数和迭代次数
func (s *Solver) iterate(st flowState, c float64) (float64, int, error) {
	history := deque.NewArrDeque[float64](s.cfg.HistoryLength)
	for i := 1; i <= s.cfg.MaxIterations; i++ {
		re := st.a * c
		next, err := st.model.Coefficient(st.geo.Beta, re)
		if err != nil {
			return 0, i, err
		}
		residual := math.Abs(st.a-re/next) / st.a
		history.AddLast(residual)
		if math.IsNaN(next) || !(next > 0) {
			return 0, i, &ConvergenceError{Iterations: i, Residuals: history.Values()}
		}
		c = next
		if residual < s.cfg.Tolerance {
			return c, i, nil
		}
	}
	return 0, s.cfg.MaxIterations, &ConvergenceError{Iterations: s.cfg.MaxIterations, Residuals: history.Values()}
}

// 非物理输入
func validate(req model.FlowRequest) error {
	p := req.Process
	if !(p.PressureMPa > 0) || math.IsInf(p.PressureMPa, 0) {
		return invalidInput("pressure %g MPa must be positive", p.PressureMPa)
	}
	if math.IsNaN(p.TemperatureC) || math.IsInf(p.TemperatureC, 0) || p.TemperatureC < -273.15 {
		return invalidInput("temperature %g ℃ is not physical", p.TemperatureC)
	}
	if p.Phase != model.PhaseLiquid && p.Phase != model.PhaseSteam {
		return invalidInput("unknown phase %v", p.Phase)
	}
	dp := req.DifferentialPressureKPa
	if !(dp >= 0) || math.IsInf(dp, 0) {
		return invalidInput("differential pressure %g kPa must be non-negative", dp)
	}
	g := req.Geometry
	if math.IsNaN(g.ReferenceTemperature) || math.IsNaN(g.PipeExpansion) || math.IsNaN(g.ElementExpansion) {
		return invalidInput("geometry %+v has NaN fields", g)
	}
	return nil
}
