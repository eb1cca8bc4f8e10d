package domain

import "strings"

// GroupKind identifies how the members of a Group are composed.
type GroupKind uint8

const (
	// GroupTask is a leaf that runs a single declared task.
	GroupTask GroupKind = iota
	// GroupSequence runs its members one after another; each must succeed before the next starts.
	GroupSequence
	// GroupConcurrent starts all of its members together and completes when all of them finish.
	GroupConcurrent
)

// Group is an execution group: a composition of declared tasks as a strict
// sequence or a best-effort concurrent set. Groups compose recursively.
type Group struct {
	kind    GroupKind
	task    InternedString
	members []Group
}

// Run returns a leaf group that runs the named task.
func Run(name string) Group {
	return Group{kind: GroupTask, task: NewInternedString(name)}
}

// Sequence returns a group whose members run strictly one after another.
func Sequence(members ...Group) Group {
	return Group{kind: GroupSequence, members: members}
}

// Concurrent returns a group whose members start together.
// A failing member does not cancel its siblings.
func Concurrent(members ...Group) Group {
	return Group{kind: GroupConcurrent, members: members}
}

// Kind returns how the group composes its members.
func (g Group) Kind() GroupKind {
	return g.kind
}

// Members returns the direct members of a sequence or concurrent group.
func (g Group) Members() []Group {
	return g.members
}

// IsZero reports whether the group is empty: no task and no members.
func (g Group) IsZero() bool {
	return g.kind == GroupTask && g.task.IsZero() && len(g.members) == 0
}

// Tasks lists the leaf task names in declaration order. A task named twice is listed twice.
func (g Group) Tasks() []InternedString {
	var out []InternedString
	g.collect(&out)
	return out
}

func (g Group) collect(out *[]InternedString) {
	if g.kind == GroupTask {
		if !g.task.IsZero() {
			*out = append(*out, g.task)
		}
		return
	}
	for _, m := range g.members {
		m.collect(out)
	}
}

// String renders the group as seq(a, par(b, c)).
func (g Group) String() string {
	var b strings.Builder
	g.write(&b)
	return b.String()
}

func (g Group) write(b *strings.Builder) {
	switch g.kind {
	case GroupTask:
		b.WriteString(g.task.String())
		return
	case GroupSequence:
		b.WriteString("seq(")
	case GroupConcurrent:
		b.WriteString("par(")
	}
	for i, m := range g.members {
		if i > 0 {
			b.WriteString(", ")
		}
		m.write(b)
	}
	b.WriteByte(')')
}
