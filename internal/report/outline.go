package report

import (
	"bytes"
	"fmt"

	"kinfolk/internal/hierarchy"
)

const (
	branchMid  = "├── "
	branchLast = "└── "
	pipeIndent = "│   "
	spaceIndent = "    "
)

// writeOutline prints each root as a section followed by a connector tree:
//
//	Family of Ada
//	Ada (1900-01-01 - Present) [Spouse(s): Bo (Unknown - Present)]
//	├── Cy (1920-03-04 - Present)
//	└── Di (Unknown - Present)
func writeOutline(buf *bytes.Buffer, roots []*hierarchy.ReportNode) {
	fmt.Fprintln(buf, listTitle)
	for _, root := range roots {
		fmt.Fprintln(buf)
		fmt.Fprintf(buf, "Family of %s\n", root.Person.FullName)
		fmt.Fprintln(buf, outlineLine(root))
		writeBranches(buf, root.Children, "")
	}
}

func writeBranches(buf *bytes.Buffer, children []*hierarchy.ReportNode, prefix string) {
	for i, c := range children {
		connector, next := branchMid, pipeIndent
		if i == len(children)-1 {
			connector, next = branchLast, spaceIndent
		}
		fmt.Fprintf(buf, "%s%s%s\n", prefix, connector, outlineLine(c))
		writeBranches(buf, c.Children, prefix+next)
	}
}

func outlineLine(n *hierarchy.ReportNode) string {
	return fmt.Sprintf("%s (%s)%s", n.Person.FullName, n.Person.Lifespan(), spouseText(n.Spouses))
}
