package calculator

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"

	"dpflow/fluid"
	"dpflow/model"
)

func TestCalculator_ComputeFlow(t *testing.T) {
	calc, err := NewCalculator(DefaultConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := calc.ComputeFlow(waterRequest(model.Orifice(model.DandDHalfTaps), 50))
	if err != nil {
		t.Fatal(err)
	}
	chk.Float64(t, "q", 1e-6, res.MassFlow, 173653.40494780114)

	_, err = calc.ComputeFlow(waterRequest(model.Orifice(model.DandDHalfTaps), 300))
	if Category(err) != CategoryOutOfValidityRange {
		t.Errorf("category = %q, want %q", Category(err), CategoryOutOfValidityRange)
	}
}

func TestCalculator_ComputeBatch(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 3
	calc, err := NewCalculator(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	var reqs []model.FlowRequest
	for i := 0; i < 20; i++ {
		dp := float64(5 * (i + 1))
		if i == 7 {
			dp = -1
		}
		reqs = append(reqs, waterRequest(allKinds[i%len(allKinds)], dp))
	}
	results := calc.ComputeBatch(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("len = %d, want %d", len(results), len(reqs))
	}
	for i, r := range results {
		want, wantErr := calc.ComputeFlow(reqs[i])
		if i == 7 {
			if !errors.Is(r.Err, ErrInvalidInput) {
				t.Errorf("request %d: err = %v, want ErrInvalidInput", i, r.Err)
			}
			continue
		}
		if r.Err != nil || wantErr != nil {
			t.Fatalf("request %d: %v / %v", i, r.Err, wantErr)
		}
		if r.Result != want {
			t.Errorf("request %d: batch %+v, single %+v", i, r.Result, want)
		}
	}

	if got := calc.ComputeBatch(nil); len(got) != 0 {
		t.Errorf("empty batch returned %d results", len(got))
	}
}

func TestExecutor_Dispatch(t *testing.T) {
	for _, workers := range []int{1, 3, 8, 50} {
		for _, total := range []int{0, 1, 7, 32} {
			seen := make([]int, total)
			newExecutor(workers).dispatch(total, func(i int) { seen[i]++ })
			for i, n := range seen {
				if n != 1 {
					t.Errorf("workers=%d total=%d: index %d visited %d times", workers, total, i, n)
				}
			}
		}
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&RangeError{Quantity: "Re", Value: 1, Min: 2, Max: 3}, CategoryOutOfValidityRange},
		{fmt.Errorf("wrapped: %w", &ConvergenceError{Iterations: 100}), CategoryConvergenceFailure},
		{invalidInput("bad"), CategoryInvalidInput},
		{fmt.Errorf("lookup: %w", fluid.ErrOutOfRange), CategoryFluidProperties},
		{errors.New("boom"), "internal"},
	}
	for _, tt := range tests {
		if got := Category(tt.err); got != tt.want {
			t.Errorf("Category(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestCalculator_FluidOutOfRange(t *testing.T) {
	calc, err := NewCalculator(DefaultConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	req := waterRequest(model.ElementKind{Family: model.ISA1932Nozzle}, 50)
	req.Process.TemperatureC = 350
	_, err = calc.ComputeFlow(req)
	if Category(err) != CategoryFluidProperties {
		t.Errorf("err = %v, category %q", err, Category(err))
	}
}

func TestComputeFixedCoefficient(tst *testing.T) {

	chk.PrintTitle("multi-hole orifice with calibrated coefficient")

	calc, err := NewCalculator(DefaultConfig(), hotWater())
	if err != nil {
		tst.Fatal(err)
	}
	req := waterRequest(model.Orifice(model.CornerTaps), 50)

	// 使用迭代得到的 C，结果应与标准孔板一致
	std, err := calc.ComputeFlow(req)
	if err != nil {
		tst.Fatal(err)
	}
	fixed, err := calc.ComputeFixedCoefficient(req, std.DischargeCoefficient)
	if err != nil {
		tst.Fatal(err)
	}
	chk.Float64(tst, "q", 1e-9*std.MassFlow, fixed.MassFlow, std.MassFlow)
	if fixed.Iterations != 0 {
		tst.Errorf("iterations = %d, want 0", fixed.Iterations)
	}

	// q = π/4 d² C sqrt(2ΔPρ/(1-β⁴))
	c := 0.65
	fixed, err = calc.ComputeFixedCoefficient(req, c)
	if err != nil {
		tst.Fatal(err)
	}
	want := math.Pi / 4 * 0.01 * c * math.Sqrt(2*50000*971.8/(1-0.0625)) * 3600
	chk.Float64(tst, "q(C=0.65)", 1e-9*want, fixed.MassFlow, want)

	zero, err := calc.ComputeFixedCoefficient(waterRequest(model.Orifice(model.CornerTaps), 0), c)
	if err != nil || zero.MassFlow != 0 {
		tst.Errorf("zero ΔP: %+v, %v", zero, err)
	}

	for _, bad := range []float64{0, -0.6, math.NaN(), math.Inf(1)} {
		if _, err := calc.ComputeFixedCoefficient(req, bad); !errors.Is(err, ErrInvalidInput) {
			tst.Errorf("C=%g: err = %v, want ErrInvalidInput", bad, err)
		}
	}
	req.DifferentialPressureKPa = 300
	if _, err := calc.ComputeFixedCoefficient(req, c); !errors.Is(err, ErrOutOfValidityRange) {
		tst.Errorf("τ=0.7: err = %v, want ErrOutOfValidityRange", err)
	}
}

func TestFittedOrificeFlow(tst *testing.T) {
	m, err := FittedOrificeFlow(0.01252, 100, 0.6, 1, 50, 971.8)
	if err != nil {
		tst.Fatal(err)
	}
	chk.Float64(tst, "m", 1e-9, m, 0.01252*100*100*0.6*math.Sqrt(50000*971.8)/1000)

	m, err = FittedOrificeFlow(0.01252, 100, 0.6, 1, 0, 971.8)
	if err != nil || m != 0 {
		tst.Errorf("zero ΔP: %g, %v", m, err)
	}

	bad := [][3]float64{{0, 50, 971.8}, {100, -1, 971.8}, {100, 50, 0}}
	for _, b := range bad {
		if _, err := FittedOrificeFlow(0.01252, b[0], 0.6, 1, b[1], b[2]); !errors.Is(err, ErrInvalidInput) {
			tst.Errorf("%v: err = %v, want ErrInvalidInput", b, err)
		}
	}
}

func TestMultiHoleOrificeFlow(tst *testing.T) {
	q, err := MultiHoleOrificeFlow(0.65, 0.5, 100, 1, 971.8, 50)
	if err != nil {
		tst.Fatal(err)
	}
	// 与 SolveFixedCoefficient 的 kg/h 结果一致
	want := math.Pi / 4 * 0.01 * 0.65 * math.Sqrt(2*50000*971.8/(1-0.0625)) * 3600
	chk.Float64(tst, "Q", 1e-9*want, q, want)

	q2, err := MultiHoleOrificeFlow(0.65, 0.5, 100, 1, 971.8, 200)
	if err != nil {
		tst.Fatal(err)
	}
	chk.Float64(tst, "Q(4ΔP)", 1e-9*want, q2, 2*q)

	for _, bad := range [][6]float64{
		{0, 0.5, 100, 1, 971.8, 50},
		{0.65, 1, 100, 1, 971.8, 50},
		{0.65, 0.5, 100, 1.2, 971.8, 50},
		{0.65, 0.5, 100, 1, 971.8, -50},
	} {
		if _, err := MultiHoleOrificeFlow(bad[0], bad[1], bad[2], bad[3], bad[4], bad[5]); !errors.Is(err, ErrInvalidInput) {
			tst.Errorf("%v: err = %v, want ErrInvalidInput", bad, err)
		}
	}
}
