package gtm

import (
	"fmt"
	"math"
	"sync"

	"github.com/flightdyn/gtm/internal/dynsys"
	"github.com/flightdyn/gtm/internal/symbolic"
)

// Symbol names, in index order. The base state order is significant:
// it fixes the index convention of every numeric state vector and of
// the STM block.
const (
	stateAirspeed   = "V"
	stateAlpha      = "alpha"
	statePitchRate  = "q"
	statePitchAngle = "theta"
	inputElevator   = "delta_e"
	inputThrottle   = "delta_t"
)

const (
	// DefaultName is the artifact name used when the caller supplies none.
	DefaultName = "GTM"
	// STMName replaces DefaultName when the STM augmentation is enabled,
	// so base and augmented variants never collide.
	STMName = "GTMWithSTM"

	baseStateDim = 4
)

var (
	baseStates = []string{stateAirspeed, stateAlpha, statePitchRate, statePitchAngle}
	baseInputs = []string{inputElevator, inputThrottle}
)

// Options selects a model variant. The zero value builds the raw base
// model; use DefaultOptions for the conventional configuration.
type Options struct {
	// AugmentSTM appends the 16 state-transition-matrix variables and
	// their governing equations d/dt Phi = A*Phi.
	AugmentSTM bool
	// Simplify applies structural reduction to the finished system.
	Simplify bool
	// Name names the artifact. Empty means DefaultName.
	Name string
}

// DefaultOptions is the conventional configuration: no STM block,
// structural simplification on, default name.
func DefaultOptions() Options {
	return Options{Simplify: true, Name: DefaultName}
}

// Builder constructs GTM systems and memoizes them per Options. The
// cache lives for the Builder's lifetime and is never evicted;
// concurrent callers with the same Options share one construction.
type Builder struct {
	mu    sync.Mutex
	cache map[Options]*cacheEntry
}

type cacheEntry struct {
	once sync.Once
	sys  *dynsys.System
	err  error
}

// NewBuilder returns a builder with an empty cache.
func NewBuilder() *Builder {
	return &Builder{cache: make(map[Options]*cacheEntry)}
}

// Default is the process-wide builder behind the package-level Build.
var Default = NewBuilder()

// Build constructs, or returns the cached, system for opts using the
// process-wide builder.
func Build(opts Options) (*dynsys.System, error) {
	return Default.Build(opts)
}

// Build returns the system for opts, constructing it on first use.
// Two calls with equal Options return the identical artifact.
func (b *Builder) Build(opts Options) (*dynsys.System, error) {
	b.mu.Lock()
	e, ok := b.cache[opts]
	if !ok {
		e = &cacheEntry{}
		b.cache[opts] = e
	}
	b.mu.Unlock()

	e.once.Do(func() {
		e.sys, e.err = construct(opts)
	})
	return e.sys, e.err
}

func construct(opts Options) (*dynsys.System, error) {
	states := append([]string(nil), baseStates...)
	rhs := []symbolic.Expr{
		polynomial(vDotTerms),
		polynomial(alphaDotTerms),
		polynomial(qDotTerms),
		symbolic.V(statePitchRate), // kinematic identity d/dt theta = q
	}
	defaults := map[string]float64{
		stateAirspeed:   trimAirspeed,
		stateAlpha:      deg2rad(trimAlphaDeg),
		statePitchRate:  0,
		statePitchAngle: deg2rad(trimThetaDeg),
		inputElevator:   deg2rad(trimElevatorDeg),
		inputThrottle:   trimThrottle,
	}

	if opts.AugmentSTM {
		// A stays symbolic: sensitivities propagate along the actual
		// trajectory, not around a fixed point.
		jac := symbolic.Jacobian(rhs, states)
		for i := 0; i < baseStateDim; i++ {
			for j := 0; j < baseStateDim; j++ {
				name := phiName(i, j)
				row := make([]symbolic.Expr, 0, baseStateDim)
				for k := 0; k < baseStateDim; k++ {
					row = append(row, symbolic.Prod(jac[i][k], symbolic.V(phiName(k, j))))
				}
				states = append(states, name)
				rhs = append(rhs, symbolic.Sum(row...))
				if i == j {
					defaults[name] = 1 // Phi(0) = I: no accumulated sensitivity
				} else {
					defaults[name] = 0
				}
			}
		}
	}

	name := opts.Name
	if name == "" {
		name = DefaultName
	}
	if opts.AugmentSTM && name == DefaultName {
		name = STMName
	}

	sys, err := dynsys.New(name, states, baseInputs, rhs, defaults)
	if err != nil {
		return nil, err
	}
	if opts.Simplify {
		return dynsys.Reduce(sys)
	}
	return sys, nil
}

// phiName is the STM variable for row i, column j (zero-based); the
// block is appended to the state vector in row-major order.
func phiName(i, j int) string {
	return fmt.Sprintf("phi%d%d", i+1, j+1)
}

func deg2rad(d float64) float64 {
	return d * math.Pi / 180
}
