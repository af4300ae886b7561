package calculator

import (
	"errors"
	"fmt"
	"math"
)

// 错误分类，调用方用 errors.Is 判断
var (
	// 压比、β 或管径超出标准规定的适用范围
	ErrOutOfValidityRange = errors.New("out of validity range")
	// 迭代超过上限仍未收敛
	ErrConvergenceFailure = errors.New("convergence failure")
	// 非物理输入：负压力、负直径、β >= 1 等
	ErrInvalidInput = errors.New("invalid input")
)

// RangeError 记录超限的量及其允许区间，单侧区间用 ±Inf 表示
type RangeError struct {
	Quantity string
	Value    float64
	Min      float64
	Max      float64
}

func (e *RangeError) Error() string {
	switch {
	case math.IsInf(e.Max, 1):
		return fmt.Sprintf("%v: %s = %g, want >= %g", ErrOutOfValidityRange, e.Quantity, e.Value, e.Min)
	case math.IsInf(e.Min, -1):
		return fmt.Sprintf("%v: %s = %g, want <= %g", ErrOutOfValidityRange, e.Quantity, e.Value, e.Max)
	}
	return fmt.Sprintf("%v: %s = %g, want [%g, %g]", ErrOutOfValidityRange, e.Quantity, e.Value, e.Min, e.Max)
}

func (e *RangeError) Unwrap() error { return ErrOutOfValidityRange }

// 检查 v 是否在 [min, max] 内，NaN 视为超限
func checkRange(quantity string, v, min, max float64) error {
	if math.IsNaN(v) || v < min || v > max {
		return &RangeError{Quantity: quantity, Value: v, Min: min, Max: max}
	}
	return nil
}

// ConvergenceError 带上最后几次迭代的残差，便于判断是振荡还是收敛太慢
type ConvergenceError struct {
	Iterations int
	Residuals  []float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%v after %d iterations, last residuals %v", ErrConvergenceFailure, e.Iterations, e.Residuals)
}

func (e *ConvergenceError) Unwrap() error { return ErrConvergenceFailure }

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
