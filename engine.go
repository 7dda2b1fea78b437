package automation

import "sync"

type (
	// Param is the name of a numeric parameter of the synthesis engine.
	Param string

	// Engine is the parameter surface of the articulatory synthesis engine.
	// The engine itself (its DSP and lifecycle) lives elsewhere; this package
	// only reads and writes named parameters.
	Engine interface {
		Value(p Param) float64
		SetValue(p Param, v float64)
		DefaultValue(p Param) float64
	}

	// Freezer is implemented by engines that can stop their own autonomous
	// movement, e.g. a UI that drifts the tongue on its own. The recorder
	// freezes the engine while capturing so that captured shapes reflect
	// only explicit input.
	Freezer interface {
		SetFrozen(frozen bool)
	}
)

const (
	ParamConstrictionIndex    Param = "constriction-index"
	ParamConstrictionDiameter Param = "constriction-diameter"
	ParamTongueIndex          Param = "tongue-index"
	ParamTongueDiameter       Param = "tongue-diameter"
	ParamVelumTarget          Param = "velum-target"
	ParamIntensity            Param = "intensity"
	ParamTenseness            Param = "tenseness-mult"
	ParamFricativeStrength    Param = "fricative-strength"
	ParamMovementSpeed        Param = "movement-speed"
	// ParamTractLength is the frame-count normalization constant n used to
	// convert stored positions into native units.
	ParamTractLength Param = "n"
)

// FrozenMovementSpeed is the movement-speed sentinel set during capture.
const FrozenMovementSpeed = -1

// ToNative converts a stored position (PositionScale units) to the engine's
// native units for tract length n.
func ToNative(pos, n float64) float64 {
	return pos / PositionScale * n
}

// FromNative converts a native position back to PositionScale units.
func FromNative(native, n float64) float64 {
	if n == 0 {
		return 0
	}
	return native / n * PositionScale
}

// MemoryEngine is an Engine that keeps its parameters in a map. It is used
// when no synthesis engine is attached, e.g. for offline inspection of
// tracks, and in tests. It is safe for concurrent use.
type MemoryEngine struct {
	mu       sync.Mutex
	values   map[Param]float64
	defaults map[Param]float64
	frozen   bool
}

// DefaultEngineValues are the resting values of a freshly started engine.
var DefaultEngineValues = map[Param]float64{
	ParamConstrictionIndex:    0,
	ParamConstrictionDiameter: 3.5,
	ParamTongueIndex:          12.9,
	ParamTongueDiameter:       2.43,
	ParamVelumTarget:          0.01,
	ParamIntensity:            1,
	ParamTenseness:            1,
	ParamFricativeStrength:    0,
	ParamMovementSpeed:        15,
	ParamTractLength:          44,
}

// NewMemoryEngine creates an engine whose values start at defaults. A nil
// map uses DefaultEngineValues.
func NewMemoryEngine(defaults map[Param]float64) *MemoryEngine {
	if defaults == nil {
		defaults = DefaultEngineValues
	}
	e := &MemoryEngine{values: map[Param]float64{}, defaults: map[Param]float64{}}
	for k, v := range defaults {
		e.defaults[k] = v
		e.values[k] = v
	}
	return e
}

// Value returns the current value of p, 0 if it was never set.
func (e *MemoryEngine) Value(p Param) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.values[p]
}

// SetValue sets p to v.
func (e *MemoryEngine) SetValue(p Param, v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.values[p] = v
}

// DefaultValue returns the value p had when the engine was created.
func (e *MemoryEngine) DefaultValue(p Param) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.defaults[p]
}

// SetFrozen enters or leaves capture mode.
func (e *MemoryEngine) SetFrozen(frozen bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frozen = frozen
}

// Frozen reports whether the engine is in capture mode.
func (e *MemoryEngine) Frozen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frozen
}
