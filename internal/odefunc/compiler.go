package odefunc

import (
	"fmt"
	"sync"

	"github.com/flightdyn/gtm/internal/gtm"
)

// funcKey is the canonical form of the full compile configuration:
// the model options plus every recognized pass-through option.
type funcKey struct {
	build            gtm.Options
	analyticJacobian bool
}

// Compiler memoizes compiled GTM functions per configuration, the same
// way gtm.Builder memoizes systems. Model construction is delegated to
// the injected builder, so a compiled function shares its system with
// every other caller of the same build options.
type Compiler struct {
	builder *gtm.Builder
	mu      sync.Mutex
	cache   map[funcKey]*funcEntry
}

type funcEntry struct {
	once sync.Once
	fn   *Func
	err  error
}

// NewCompiler returns a compiler with an empty cache, building models
// through b.
func NewCompiler(b *gtm.Builder) *Compiler {
	return &Compiler{builder: b, cache: make(map[funcKey]*funcEntry)}
}

var defaultCompiler = NewCompiler(gtm.Default)

// GTMFunction compiles, or returns the cached, numeric function for
// the given model and compile options using the process-wide builder
// and compiler.
func GTMFunction(build gtm.Options, opts map[string]bool) (*Func, error) {
	return defaultCompiler.Compile(build, opts)
}

// Compile returns the compiled function for the configuration,
// building and compiling on first use. Two calls with an equal
// configuration return the identical Func.
func (c *Compiler) Compile(build gtm.Options, opts map[string]bool) (*Func, error) {
	key, err := canonicalKey(build, opts)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	e, ok := c.cache[key]
	if !ok {
		e = &funcEntry{}
		c.cache[key] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		sys, err := c.builder.Build(build)
		if err != nil {
			e.err = err
			return
		}
		e.fn, e.err = Compile(sys, map[string]bool{
			OptAnalyticJacobian: key.analyticJacobian,
		})
	})
	return e.fn, e.err
}

func canonicalKey(build gtm.Options, opts map[string]bool) (funcKey, error) {
	merged := map[string]bool{OptAnalyticJacobian: true}
	for k, v := range opts {
		if !recognized[k] {
			return funcKey{}, fmt.Errorf("%w: %q", ErrUnknownOption, k)
		}
		merged[k] = v
	}
	return funcKey{build: build, analyticJacobian: merged[OptAnalyticJacobian]}, nil
}
