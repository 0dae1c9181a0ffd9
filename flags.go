package pyext

// FlagPolicy groups an extension's extra compile flags by the option they
// implement. CompileArgs flattens the groups in a fixed order.
//
// Parallel, Standard, ArchTuning and WarningSuppression only affect build
// performance, portability and diagnostics. Wraparound and Release change the
// behaviour of the produced module: the wrapped library relies on signed
// overflow wrapping, and Release turns off its internal assertions.
type FlagPolicy struct {
	// Parallel enables threaded and parallel code in the wrapped library
	// and link-time optimization.
	Parallel []string

	// Standard selects the language standard.
	Standard []string

	// WarningSuppression silences diagnostic categories that are noise.
	WarningSuppression []string

	// Wraparound makes signed arithmetic overflow wrap (twos-complement).
	Wraparound []string

	// ArchTuning targets the build host's exact instruction set. The module
	// will not run on other CPUs.
	ArchTuning []string

	// Release optimizes and disables assertions in the wrapped library.
	Release []string
}

// Flags recognised by FlagPolicy.
const (
	FlagWraparound = "-fwrapv"
	FlagNoDebug    = "-DNDEBUG"
)

// DefaultFlagPolicy is the policy used for the solver library.
func DefaultFlagPolicy() FlagPolicy {
	return FlagPolicy{
		Parallel: []string{
			"-pthread",
			"-DUSE_PTHREADS",
			"-fopenmp",
			"-D_GLIBCXX_PARALLEL",
			"-flto",
		},
		Standard: []string{"-std=c++11"},
		WarningSuppression: []string{
			"-Wno-unused-variable",
			"-Wno-unused-but-set-variable",
		},
		Wraparound: []string{FlagWraparound},
		ArchTuning: []string{
			"-march=native",
			"-mtune=native",
		},
		Release: []string{
			"-Ofast",
			FlagNoDebug,
		},
	}
}

// CompileArgs returns the flags in declaration order of the groups.
func (p FlagPolicy) CompileArgs() []string {
	var args []string
	for _, group := range [][]string{
		p.Parallel,
		p.Standard,
		p.WarningSuppression,
		p.Wraparound,
		p.ArchTuning,
		p.Release,
	} {
		args = append(args, group...)
	}
	return args
}

// WithoutWraparound returns a copy of the policy with signed overflow left
// undefined. This changes the behaviour of the produced module.
func (p FlagPolicy) WithoutWraparound() FlagPolicy {
	p.Wraparound = nil
	return p
}

// Debug returns a copy of the policy with the release group removed, which
// re-enables assertions in the wrapped library.
func (p FlagPolicy) Debug() FlagPolicy {
	p.Release = nil
	return p
}

// Portable returns a copy of the policy without host-specific tuning.
func (p FlagPolicy) Portable() FlagPolicy {
	p.ArchTuning = nil
	return p
}

// BehaviorAffecting reports whether removing flag changes what the produced
// module computes, as opposed to how fast it is or what the compiler prints.
func BehaviorAffecting(flag string) bool {
	switch flag {
	case FlagWraparound, FlagNoDebug:
		return true
	}
	return false
}
