package checker

import (
	"errors"
	"fmt"

	"krait/internal/rule"
)

// Hook binds a rule body to one dispatch point. Run may report any of
// Rules; the hook is skipped when none of them is enabled.
type Hook struct {
	// Name identifies the hook in traces and faults.
	Name  string
	Kind  Kind
	Rules []rule.Rule
	Run   func(*Snapshot, Node)
}

// Registry is the static list of every hook, built once per process.
type Registry struct {
	hooks []Hook
	rules rule.Set
}

// NewRegistry validates and concatenates hook lists in the given order.
func NewRegistry(lists ...[]Hook) (*Registry, error) {
	r := &Registry{}
	var errs []error
	for _, list := range lists {
		for _, h := range list {
			if err := validate(h); err != nil {
				errs = append(errs, err)
				continue
			}
			if h.Name == "" {
				h.Name = h.Rules[0].Code()
			}
			for _, id := range h.Rules {
				r.rules.Insert(id)
			}
			r.hooks = append(r.hooks, h)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return r, nil
}

func validate(h Hook) error {
	if !h.Kind.IsValid() {
		return fmt.Errorf("hook %q: invalid kind %d", h.Name, h.Kind)
	}
	if h.Run == nil {
		return fmt.Errorf("hook %q (%s): nil Run", h.Name, h.Kind)
	}
	if len(h.Rules) == 0 {
		return fmt.Errorf("hook %q (%s): no rules", h.Name, h.Kind)
	}
	for _, id := range h.Rules {
		if !id.IsValid() {
			return fmt.Errorf("hook %q (%s): invalid rule %d", h.Name, h.Kind, id)
		}
	}
	return nil
}

// Len returns the number of registered hooks.
func (r *Registry) Len() int { return len(r.hooks) }

// Hooks returns the registered hooks in registration order.
func (r *Registry) Hooks() []Hook { return r.hooks }

// Rules returns every rule some hook can report.
func (r *Registry) Rules() rule.Set { return r.rules }

// Dispatch precomputes, per kind, the hooks with at least one enabled rule.
func (r *Registry) Dispatch(enabled rule.Set) *Dispatch {
	d := &Dispatch{enabled: enabled}
	if r == nil {
		return d
	}
	for i := range r.hooks {
		h := &r.hooks[i]
		if !enabled.ContainsAny(h.Rules...) {
			continue
		}
		d.table[h.Kind] = append(d.table[h.Kind], h)
		d.len++
	}
	return d
}

// Dispatch is the per-run hook table for one enabled rule set. It is
// read-only and may be shared by concurrent checkers.
type Dispatch struct {
	enabled rule.Set
	table   [kindCount][]*Hook
	len     int
}

// Hooks returns the active hooks of a kind in registration order.
func (d *Dispatch) Hooks(k Kind) []*Hook {
	if d == nil || !k.IsValid() {
		return nil
	}
	return d.table[k]
}

// Has reports whether any hook listens on k.
func (d *Dispatch) Has(k Kind) bool { return len(d.Hooks(k)) > 0 }

// Enabled returns the rule set the table was built for.
func (d *Dispatch) Enabled() rule.Set {
	if d == nil {
		return rule.Set{}
	}
	return d.enabled
}

// Len returns the number of active hooks.
func (d *Dispatch) Len() int {
	if d == nil {
		return 0
	}
	return d.len
}
