package studio

import "github.com/trombonestudio/automation"

// Player pushes the values of a selected frame into the engine.
type Player struct {
	engine automation.Engine
}

func NewPlayer(engine automation.Engine) *Player {
	return &Player{engine: engine}
}

// Apply pushes frame index of t into the engine. It returns false if the index
// does not refer to a frame.
func (p *Player) Apply(t automation.Track, index int) bool {
	if index < 0 || index >= t.Len() {
		return false
	}
	for _, v := range Targets(t.Frames[index], t.Adjustment, p.engine.Value) {
		p.engine.SetValue(v.Param, v.Value)
	}
	return true
}

// ParamValue is one engine parameter write.
type ParamValue struct {
	Param automation.Param
	Value float64
}

// Targets computes the engine writes a frame produces, in descriptor order.
// current reads the engine's live values.
//
// The tongue position and diameter are controlled through the adjustment
// target: without a target the frame exerts no control over them and they
// are left out. With a target and a nonzero blend, the written value is
// lerp(current, target, blend); with a zero blend the frame's own stored
// value is used.
func Targets(f automation.Frame, adj *automation.Adjustment, current func(automation.Param) float64) []ParamValue {
	n := current(automation.ParamTractLength)
	ret := make([]ParamValue, 0, len(automation.Descriptors))
	for _, d := range automation.Descriptors {
		if d.Param == "" {
			continue
		}
		v := f.Get(d.Key)
		switch d.Key {
		case automation.TongueIndex, automation.TongueDiameter:
			if adj == nil {
				continue
			}
			if f.TA != 0 {
				target := adj.D
				if d.Key == automation.TongueIndex {
					target = automation.ToNative(adj.I, n)
				}
				ret = append(ret, ParamValue{d.Param, automation.Lerp(current(d.Param), target, f.TA)})
				continue
			}
		}
		if d.Positional {
			v = automation.ToNative(v, n)
		}
		ret = append(ret, ParamValue{d.Param, v})
	}
	return ret
}
