// Package midicc connects an automation engine to MIDI control-change
// messages: parameter writes are mirrored to an output port, and CC messages
// from a hardware controller move the engine's parameters, e.g. to perform
// gestures during capture.
package midicc

import (
	"fmt"
	"math"
	"sync"

	"github.com/trombonestudio/automation"
	"gitlab.com/gomidi/midi/v2"
)

type (
	// Mapping binds one engine parameter to a controller number. The
	// parameter's native range [Min, Max] is spread over the CC values
	// 0..127.
	Mapping struct {
		Param      automation.Param
		Controller uint8
		Min, Max   float64
	}

	// Engine wraps another engine. Writes go to the wrapped engine and are
	// mirrored as CC messages through send; incoming CC messages are written
	// to the wrapped engine without being echoed. The wrapped engine must be
	// safe for concurrent use if HandleMessage is called from a MIDI driver
	// goroutine.
	Engine struct {
		automation.Engine
		channel      uint8
		send         func(midi.Message) error
		byParam      map[automation.Param]Mapping
		byController map[uint8]Mapping

		mu  sync.Mutex
		err error
	}
)

// firstController is the first of the general purpose controllers 20..31,
// which have no predefined meaning.
const firstController = 20

// DefaultMappings maps every parameter a frame controls to consecutive
// general purpose controllers, in descriptor order. Positional parameters
// span the native range of a tract of length n.
func DefaultMappings(n float64) []Mapping {
	var ret []Mapping
	for _, d := range automation.Descriptors {
		if d.Param == "" {
			continue
		}
		m := Mapping{Param: d.Param, Controller: uint8(firstController + len(ret)), Min: d.Min, Max: d.Max}
		if d.Positional {
			m.Min, m.Max = automation.ToNative(d.Min, n), automation.ToNative(d.Max, n)
		}
		ret = append(ret, m)
	}
	return ret
}

// New wraps inner. send may be nil, in which case writes are not mirrored;
// it is typically the function returned by midi.SendTo for an output port.
func New(inner automation.Engine, channel uint8, send func(midi.Message) error, mappings []Mapping) (*Engine, error) {
	if channel > 15 {
		return nil, fmt.Errorf("invalid MIDI channel %d", channel)
	}
	e := &Engine{
		Engine:       inner,
		channel:      channel,
		send:         send,
		byParam:      map[automation.Param]Mapping{},
		byController: map[uint8]Mapping{},
	}
	for _, m := range mappings {
		if m.Controller > 127 {
			return nil, fmt.Errorf("invalid controller %d for %s", m.Controller, m.Param)
		}
		if _, ok := e.byController[m.Controller]; ok {
			return nil, fmt.Errorf("controller %d mapped twice", m.Controller)
		}
		e.byParam[m.Param] = m
		e.byController[m.Controller] = m
	}
	return e, nil
}

// SetValue writes the wrapped engine and mirrors the value as a CC message.
// A failed send is remembered and reported by Err.
func (e *Engine) SetValue(p automation.Param, v float64) {
	e.Engine.SetValue(p, v)
	m, ok := e.byParam[p]
	if !ok || e.send == nil {
		return
	}
	if err := e.send(midi.ControlChange(e.channel, m.Controller, m.encode(v))); err != nil {
		e.mu.Lock()
		if e.err == nil {
			e.err = fmt.Errorf("sending %s: %w", p, err)
		}
		e.mu.Unlock()
	}
}

// SetFrozen forwards to the wrapped engine if it supports freezing.
func (e *Engine) SetFrozen(frozen bool) {
	if f, ok := e.Engine.(automation.Freezer); ok {
		f.SetFrozen(frozen)
	}
}

// HandleMessage applies an incoming CC message on the engine's channel to the
// mapped parameter. It reports whether the message was applied.
func (e *Engine) HandleMessage(msg midi.Message, timestampms int32) bool {
	var channel, controller, value uint8
	if !msg.GetControlChange(&channel, &controller, &value) || channel != e.channel {
		return false
	}
	m, ok := e.byController[controller]
	if !ok {
		return false
	}
	e.Engine.SetValue(m.Param, m.decode(value))
	return true
}

// Err returns the first error encountered while sending.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

func (m Mapping) encode(v float64) uint8 {
	if m.Max == m.Min {
		return 0
	}
	return uint8(math.Round(automation.Clamp((v-m.Min)/(m.Max-m.Min), 0, 1) * 127))
}

func (m Mapping) decode(value uint8) float64 {
	return m.Min + float64(min(value, 127))/127*(m.Max-m.Min)
}
