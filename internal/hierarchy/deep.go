package hierarchy

import (
	"fmt"
	"strings"

	"kinfolk/internal/family/models"
)

// CyclePolicy decides what DeepBuilder does when a person would become
// their own descendant on one branch.
type CyclePolicy int

const (
	// CyclePolicyFail aborts the build with a *CyclicAncestryError.
	CyclePolicyFail CyclePolicy = iota
	// CyclePolicySkip drops the offending parent-child edge and continues.
	CyclePolicySkip
)

// CyclicAncestryError reports a person reached again while still on the
// current root-to-node path.
type CyclicAncestryError struct {
	PersonID string
	// Path lists the ids from the root down to the parent that closed the cycle.
	Path []string
}

func (e *CyclicAncestryError) Error() string {
	return fmt.Sprintf("cyclic ancestry: %s is its own ancestor via %s",
		e.PersonID, strings.Join(e.Path, " -> "))
}

// DeepBuilder expands every descendant of a root person.
type DeepBuilder struct {
	policy CyclePolicy
	onSkip func(parentID, childID string)
}

type DeepOption func(*DeepBuilder)

// WithCyclePolicy selects fail (default) or skip behaviour.
func WithCyclePolicy(p CyclePolicy) DeepOption {
	return func(b *DeepBuilder) {
		b.policy = p
	}
}

// WithSkipHook is called for every edge dropped under CyclePolicySkip.
func WithSkipHook(fn func(parentID, childID string)) DeepOption {
	return func(b *DeepBuilder) {
		b.onSkip = fn
	}
}

func NewDeepBuilder(opts ...DeepOption) *DeepBuilder {
	b := &DeepBuilder{policy: CyclePolicyFail}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build expands root depth first. At each person it attaches the resolved
// partner of every union naming them and recurses into their children in
// birth order. The cycle guard is scoped to the current path, so a person
// may appear in several branches but never below themselves.
func (b *DeepBuilder) Build(root models.Person, members []models.Person, unions []models.Union) (*ReportNode, error) {
	idx := newIndex(members, unions)
	w := &deepWalk{builder: b, idx: idx, onPath: make(map[string]bool)}
	return w.expand(root)
}

// BuildAll builds one deep hierarchy per root, stopping at the first error.
func (b *DeepBuilder) BuildAll(roots []models.Person, members []models.Person, unions []models.Union) ([]*ReportNode, error) {
	idx := newIndex(members, unions)
	trees := make([]*ReportNode, 0, len(roots))
	for _, root := range roots {
		w := &deepWalk{builder: b, idx: idx, onPath: make(map[string]bool)}
		tree, err := w.expand(root)
		if err != nil {
			return nil, err
		}
		trees = append(trees, tree)
	}
	return trees, nil
}

type deepWalk struct {
	builder *DeepBuilder
	idx     *index
	onPath  map[string]bool
	path    []string
}

func (w *deepWalk) expand(person models.Person) (*ReportNode, error) {
	w.onPath[person.ID] = true
	w.path = append(w.path, person.ID)
	defer func() {
		delete(w.onPath, person.ID)
		w.path = w.path[:len(w.path)-1]
	}()

	node := &ReportNode{
		Person:   person,
		Spouses:  w.spousesOf(person.ID),
		Children: []*ReportNode{},
	}

	for _, child := range SortByBirth(w.idx.childrenOf(person.ID)) {
		if w.onPath[child.ID] {
			if w.builder.policy == CyclePolicySkip {
				if w.builder.onSkip != nil {
					w.builder.onSkip(person.ID, child.ID)
				}
				continue
			}
			return nil, &CyclicAncestryError{
				PersonID: child.ID,
				Path:     append([]string(nil), w.path...),
			}
		}
		sub, err := w.expand(child)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, sub)
	}
	return node, nil
}

func (w *deepWalk) spousesOf(id string) []models.Person {
	spouses := []models.Person{}
	for _, u := range w.idx.unionsOfPerson(id) {
		otherID, _ := u.Other(id)
		if spouse, ok := w.idx.lookup(otherID); ok {
			spouses = append(spouses, spouse)
		}
	}
	return spouses
}
