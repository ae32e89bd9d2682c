package hierarchy

import (
	"encoding/json"

	"kinfolk/internal/family/models"
)

// ExtendedFamilyLabel labels markers and virtual roots.
const ExtendedFamilyLabel = "Extended Family"

// Kind discriminates the TreeNode variants.
type Kind int

const (
	KindPerson Kind = iota
	KindVirtualRoot
	KindMarker
)

func (k Kind) String() string {
	switch k {
	case KindPerson:
		return "person"
	case KindVirtualRoot:
		return "virtual_root"
	case KindMarker:
		return "marker"
	}
	return "unknown"
}

// TreeNode is one node of a focal tree.
//
// Only KindPerson nodes carry a Person. Spouses and Children are nil when
// empty so that layout engines can tell "none" apart from "not loaded".
type TreeNode struct {
	Kind   Kind
	Label  string
	Anchor string

	Person *models.Person
	// Union is the record attaching this node as a spouse, when one exists.
	Union *models.Union

	Spouses  []*TreeNode
	Children []*TreeNode
}

// PersonNode copies p so callers never share the snapshot record.
func PersonNode(p models.Person) *TreeNode {
	return &TreeNode{Kind: KindPerson, Person: &p}
}

// MarkerNode stands in for the unexpanded family of anchorID.
func MarkerNode(anchorID string) *TreeNode {
	return &TreeNode{Kind: KindMarker, Label: ExtendedFamilyLabel, Anchor: anchorID}
}

// VirtualRoot hosts several top-level branches under one root.
func VirtualRoot(children ...*TreeNode) *TreeNode {
	return &TreeNode{Kind: KindVirtualRoot, Label: ExtendedFamilyLabel, Children: children}
}

// Navigable reports whether the node can become the next focal person.
func (n *TreeNode) Navigable() bool {
	return n != nil && n.Kind == KindPerson && n.Person != nil
}

// ID returns the person id, or "" for synthetic nodes.
func (n *TreeNode) ID() string {
	if !n.Navigable() {
		return ""
	}
	return n.Person.ID
}

// Name returns the person's name or the synthetic label.
func (n *TreeNode) Name() string {
	if n.Navigable() {
		return n.Person.FullName
	}
	return n.Label
}

// Key is unique within one tree and stable across rebuilds.
func (n *TreeNode) Key() string {
	switch n.Kind {
	case KindMarker:
		return "marker-" + n.Anchor
	case KindVirtualRoot:
		return "virtual-root"
	}
	return n.ID()
}

// Walk visits n and its spouses and children depth first.
// Returning false from fn stops the walk below that node.
func (n *TreeNode) Walk(fn func(node *TreeNode, depth int) bool) {
	n.walk(fn, 0)
}

func (n *TreeNode) walk(fn func(*TreeNode, int) bool, depth int) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, s := range n.Spouses {
		s.walk(fn, depth)
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// Count returns the number of nodes reachable from n, spouses included.
func (n *TreeNode) Count() int {
	count := 0
	n.Walk(func(*TreeNode, int) bool {
		count++
		return true
	})
	return count
}

type treeNodeJSON struct {
	Kind        string        `json:"kind"`
	Key         string        `json:"key"`
	Label       string        `json:"label,omitempty"`
	Navigable   bool          `json:"navigable"`
	ID          string        `json:"id,omitempty"`
	FullName    string        `json:"full_name,omitempty"`
	BirthDate   *models.Date  `json:"birth_date,omitempty"`
	DeathDate   *models.Date  `json:"death_date,omitempty"`
	PortraitURL string        `json:"portrait_url,omitempty"`
	Bio         string        `json:"bio,omitempty"`
	FatherID    string        `json:"father_id,omitempty"`
	MotherID    string        `json:"mother_id,omitempty"`
	Union       *models.Union `json:"union,omitempty"`
	Spouses     []*TreeNode   `json:"spouses,omitempty"`
	Children    []*TreeNode   `json:"children,omitempty"`
}

// MarshalJSON flattens the variant into the shape layout engines consume.
func (n *TreeNode) MarshalJSON() ([]byte, error) {
	out := treeNodeJSON{
		Kind:      n.Kind.String(),
		Key:       n.Key(),
		Label:     n.Label,
		Navigable: n.Navigable(),
		Union:     n.Union,
		Spouses:   n.Spouses,
		Children:  n.Children,
	}
	if p := n.Person; p != nil {
		out.ID = p.ID
		out.FullName = p.FullName
		out.BirthDate = p.BirthDate
		out.DeathDate = p.DeathDate
		out.PortraitURL = p.PortraitURL
		out.Bio = p.Bio
		out.FatherID = p.FatherID
		out.MotherID = p.MotherID
	}
	return json.Marshal(out)
}

// ReportNode is one generation of a deep hierarchy. Spouses and Children
// are always non-nil.
type ReportNode struct {
	Person   models.Person   `json:"person"`
	Spouses  []models.Person `json:"spouses"`
	Children []*ReportNode   `json:"children"`
}

// Size returns the number of person entries in the subtree, spouses excluded.
func (n *ReportNode) Size() int {
	size := 1
	for _, c := range n.Children {
		size += c.Size()
	}
	return size
}

// Depth returns the number of generations below and including n.
func (n *ReportNode) Depth() int {
	deepest := 0
	for _, c := range n.Children {
		if d := c.Depth(); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}
