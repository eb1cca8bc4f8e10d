package domain

import "go.trai.ch/zerr"

// Rebuild is the unit of work a watch rule returns for a changed path.
// Exactly one of Target, Action or Globs is set.
type Rebuild struct {
	// Label names the unit in logs and spans.
	Label string
	// Target is a group of declared tasks, e.g. the vendor trio.
	Target Group
	// Action is a single ad hoc action, e.g. copying one asset.
	Action Action
	// Globs select a subset of a group-aggregated source. They are expanded
	// into an action by the rule's Expand function.
	Globs []string
}

// RebuildTarget returns a rebuild that runs a declared group.
func RebuildTarget(label string, target Group) Rebuild {
	return Rebuild{Label: label, Target: target}
}

// RebuildAction returns a rebuild that runs a single ad hoc action.
func RebuildAction(label string, action Action) Rebuild {
	return Rebuild{Label: label, Action: action}
}

// RebuildGlobs returns a rebuild restricted to the sources matched by globs.
func RebuildGlobs(label string, globs ...string) Rebuild {
	return Rebuild{Label: label, Globs: globs}
}

// Validate checks that exactly one unit of work is set.
func (r *Rebuild) Validate() error {
	n := 0
	if !r.Target.IsZero() {
		n++
	}
	if r.Action != nil {
		n++
	}
	if len(r.Globs) > 0 {
		n++
	}
	if n != 1 {
		return zerr.With(zerr.Wrap(ErrInvalidRebuild, "rebuild must set exactly one unit of work"), "label", r.Label)
	}
	return nil
}
