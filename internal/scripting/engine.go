// Package scripting wraps a gopher-lua VM for the two game-logic hooks
// that stay script-driven rather than hardcoded: AI nature-coefficient
// tables and item-application effect scripts (supplemented from
// original_source/SparringRobotAI.cpp and ItemApplicationProcesser.cpp —
// see SPEC_FULL.md "Supplemented features").
package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM. Single-goroutine access only — the
// map's update tick owns it; hot reload happens via a fresh Engine swap,
// never concurrent mutation of one VM.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every script under scriptsDir's
// "ai" and "itemfx" subdirectories.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	for _, sub := range []string{"ai", "itemfx"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// NatureCoefficients is the per-nature, per-combat-substate threat weight
// set a robot's AI applies (spec.md §4.9, supplemented from
// SparringRobotAI.cpp). Indexed by substate: [SubStateNone, SubStateChase,
// SubStateEscape].
type NatureCoefficients struct {
	DistanceWeight [3]float64
	HealthWeight   [3]float64
	DamageWeight   [3]float64
	ChargeWeight   [3]float64
}

// GetNatureCoefficients calls Lua get_nature_coefficients(nature) and
// falls back to a flat all-ones table if the script or function is
// absent, so AI threat scoring degrades gracefully rather than panicking.
func (e *Engine) GetNatureCoefficients(nature int) NatureCoefficients {
	fallback := NatureCoefficients{
		DistanceWeight: [3]float64{1, 1, 1},
		HealthWeight:   [3]float64{1, 1, 1},
		DamageWeight:   [3]float64{1, 1, 1},
		ChargeWeight:   [3]float64{1, 1, 1},
	}

	fn := e.vm.GetGlobal("get_nature_coefficients")
	if fn == lua.LNil {
		return fallback
	}

	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, lua.LNumber(nature)); err != nil {
		e.log.Error("lua get_nature_coefficients error", zap.Error(err), zap.Int("nature", nature))
		return fallback
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		return fallback
	}

	return NatureCoefficients{
		DistanceWeight: lFloat3(rt, "distance"),
		HealthWeight:   lFloat3(rt, "health"),
		DamageWeight:   lFloat3(rt, "damage"),
		ChargeWeight:   lFloat3(rt, "charge"),
	}
}

func lFloat3(t *lua.LTable, key string) [3]float64 {
	sub, ok := t.RawGetString(key).(*lua.LTable)
	if !ok {
		return [3]float64{1, 1, 1}
	}
	var out [3]float64
	for i := range out {
		out[i] = float64(lua.LVAsNumber(sub.RawGetInt(i + 1)))
	}
	return out
}

// ItemEffectKind groups the ordering class an item effect belongs to
// (spec.md §4.10, supplemented: percent accumulators apply before flat
// before health effects — ItemApplicationProcesser.cpp's ordering).
type ItemEffectKind int

const (
	EffectPercent ItemEffectKind = iota
	EffectFlat
	EffectHealth
)

// ItemEffect is one scripted mutation an item application contributes.
type ItemEffect struct {
	Kind       ItemEffectKind
	Stat       string
	Value      float64
	DurationMS int64 // 0 = instantaneous
}

// GetItemEffects calls Lua get_item_effects(template_id) and returns the
// ordered effect list for applying template_id to a unit. Returns nil if
// no script defines the item (callers treat that as "no effect").
func (e *Engine) GetItemEffects(templateID int32) []ItemEffect {
	fn := e.vm.GetGlobal("get_item_effects")
	if fn == lua.LNil {
		return nil
	}

	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, lua.LNumber(templateID)); err != nil {
		e.log.Error("lua get_item_effects error", zap.Error(err), zap.Int32("template_id", templateID))
		return nil
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		return nil
	}

	var effects []ItemEffect
	rt.ForEach(func(_, v lua.LValue) {
		row, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		effects = append(effects, ItemEffect{
			Kind:       ItemEffectKind(lInt(row, "kind")),
			Stat:       lStr(row, "stat"),
			Value:      float64(lua.LVAsNumber(row.RawGetString("value"))),
			DurationMS: int64(lua.LVAsNumber(row.RawGetString("duration_ms"))),
		})
	})
	return effects
}

func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
