package calculator

import (
	"errors"

	log "github.com/sirupsen/logrus"

	"dpflow/fluid"
	"dpflow/model"
)

// calculator 的接口定义

type Calculator interface {
	// 单次流量计算
	ComputeFlow(req model.FlowRequest) (model.SolveResult, error)

	// 批量计算，结果顺序与请求顺序一致
	ComputeBatch(reqs []model.FlowRequest) []BatchResult

	// 非标准多孔孔板，流出系数由标定给出
	ComputeFixedCoefficient(req model.FlowRequest, c float64) (model.SolveResult, error)

	// 当前计算参数
	Config() Config
}

type BatchResult struct {
	Result model.SolveResult
	Err    error
}

type flowCalculator struct {
	solver   *Solver
	executor *executor
}

// NewCalculator props 为 nil 时使用内置物性表
func NewCalculator(cfg Config, props fluid.Provider) (Calculator, error) {
	if props == nil {
		t, err := fluid.Default()
		if err != nil {
			return nil, err
		}
		props = t
	}
	s := NewSolver(cfg, props)
	return &flowCalculator{
		solver:   s,
		executor: newExecutor(s.cfg.Workers),
	}, nil
}

func (c *flowCalculator) Config() Config {
	return c.solver.Config()
}

func (c *flowCalculator) ComputeFlow(req model.FlowRequest) (model.SolveResult, error) {
	res, err := c.solver.Solve(req)
	if err != nil {
		log.WithFields(log.Fields{
			"kind":     req.Kind.String(),
			"pressure": req.Process.PressureMPa,
			"dp":       req.DifferentialPressureKPa,
			"category": Category(err),
		}).Warn("流量计算失败: ", err)
	}
	return res, err
}

func (c *flowCalculator) ComputeBatch(reqs []model.FlowRequest) []BatchResult {
	results := make([]BatchResult, len(reqs))
	c.executor.dispatch(len(reqs), func(i int) {
		res, err := c.solver.Solve(reqs[i])
		results[i] = BatchResult{Result: res, Err: err}
	})
	return results
}

func (c *flowCalculator) ComputeFixedCoefficient(req model.FlowRequest, coefficient float64) (model.SolveResult, error) {
	return c.solver.SolveFixedCoefficient(req, coefficient)
}

// 错误分类名，用于日志和前端
const (
	CategoryOutOfValidityRange = "out_of_validity_range"
	CategoryConvergenceFailure = "convergence_failure"
	CategoryInvalidInput       = "invalid_input"
	CategoryFluidProperties    = "fluid_properties"
)

func Category(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrOutOfValidityRange):
		return CategoryOutOfValidityRange
	case errors.Is(err, ErrConvergenceFailure):
		return CategoryConvergenceFailure
	case errors.Is(err, ErrInvalidInput):
		return CategoryInvalidInput
	case errors.Is(err, fluid.ErrOutOfRange):
		return CategoryFluidProperties
	}
	return "internal"
}
