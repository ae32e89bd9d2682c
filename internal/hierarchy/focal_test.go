package hierarchy

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinfolk/internal/family/models"
)

func TestBuildFocalNoTree(t *testing.T) {
	members := []models.Person{person("a")}

	t.Run("empty members", func(t *testing.T) {
		assert.Nil(t, BuildFocal(nil, "a", nil))
		assert.Nil(t, BuildFocal([]models.Person{}, "a", []models.Union{}))
	})

	t.Run("empty focal id", func(t *testing.T) {
		assert.Nil(t, BuildFocal(members, "", nil))
	})

	t.Run("unknown focal id", func(t *testing.T) {
		assert.Nil(t, BuildFocal(members, "unknown-id", nil))
	})
}

func TestBuildFocalLoneFocal(t *testing.T) {
	root := BuildFocal([]models.Person{person("a")}, "a", nil)

	require.NotNil(t, root)
	assert.Equal(t, KindPerson, root.Kind)
	assert.Equal(t, "a", root.ID())
	assert.Nil(t, root.Spouses)
	assert.Nil(t, root.Children)
}

func TestBuildFocalSiblings(t *testing.T) {
	t.Run("matches on shared father only", func(t *testing.T) {
		members := []models.Person{
			person("A", father("P")),
			person("B", father("P")),
			person("C", mother("Q")),
		}
		root := BuildFocal(members, "A", nil)

		// P is dangling so the focal has no resolved parents.
		require.NotNil(t, root)
		require.Equal(t, KindVirtualRoot, root.Kind)
		assert.Equal(t, []string{"A", "B"}, ids(root.Children))
	})

	t.Run("half siblings on either side are included", func(t *testing.T) {
		members := []models.Person{
			person("F"), person("M"), person("M2"),
			person("A", father("F"), mother("M")),
			person("H1", father("F"), mother("M2")),
			person("H2", mother("M")),
			person("X", father("other")),
		}
		root := BuildFocal(members, "A", nil)

		require.NotNil(t, root)
		assert.Equal(t, "F", root.ID())
		assert.Equal(t, []string{"A", "H1", "H2"}, ids(root.Children))
	})
}

func TestBuildFocalChildrenOrder(t *testing.T) {
	members := []models.Person{
		person("F"),
		person("c1990", father("F"), born("1990-01-01")),
		person("cnone", father("F")),
		person("c1980", mother("F"), born("1980-01-01")),
	}
	root := BuildFocal(members, "F", nil)

	require.NotNil(t, root)
	assert.Equal(t, []string{"c1980", "c1990", "cnone"}, ids(root.Children))
}

func TestBuildFocalChildMarkers(t *testing.T) {
	members := []models.Person{
		person("F"),
		person("C1", father("F"), born("1970-01-01")),
		person("C", father("F"), born("1990-01-01")),
		person("G", father("C")),
		person("C2", father("F"), born("1980-01-01")),
		person("S"),
	}
	unions := []models.Union{union("u1", "C2", "S")}

	root := BuildFocal(members, "F", unions)
	require.NotNil(t, root)
	require.Equal(t, []string{"C1", "C2", "C"}, ids(root.Children))

	c1, c2, c := root.Children[0], root.Children[1], root.Children[2]
	assert.Nil(t, c1.Children, "childless, unmarried child gets no marker")

	require.Len(t, c2.Children, 1, "married child gets a marker")
	assert.Equal(t, KindMarker, c2.Children[0].Kind)

	require.Len(t, c.Children, 1)
	marker := c.Children[0]
	assert.Equal(t, KindMarker, marker.Kind)
	assert.Equal(t, ExtendedFamilyLabel, marker.Label)
	assert.Equal(t, "C", marker.Anchor)
	assert.False(t, marker.Navigable())

	root.Walk(func(n *TreeNode, _ int) bool {
		assert.NotEqual(t, "G", n.ID(), "grandchild must not be resolved")
		return true
	})
}

func TestBuildFocalSpouses(t *testing.T) {
	t.Run("co-parent without union is a spouse", func(t *testing.T) {
		members := []models.Person{
			person("F"),
			person("M"),
			person("C", father("F"), mother("M")),
		}
		root := BuildFocal(members, "F", nil)

		require.NotNil(t, root)
		require.Len(t, root.Spouses, 1)
		assert.Equal(t, "M", root.Spouses[0].ID())
		assert.Nil(t, root.Spouses[0].Union)
	})

	t.Run("union partners carry their union and are deduplicated", func(t *testing.T) {
		members := []models.Person{
			person("F"),
			person("W1"),
			person("W2", father("WP")),
			person("C", father("F"), mother("W1")),
		}
		unions := []models.Union{
			union("u1", "W1", "F"),
			union("u2", "F", "W2"),
			union("u3", "F", "ghost"),
		}
		root := BuildFocal(members, "F", unions)

		require.NotNil(t, root)
		assert.Equal(t, []string{"W1", "W2", "marker-W2"}, ids(root.Spouses))
		require.NotNil(t, root.Spouses[0].Union)
		assert.Equal(t, "u1", root.Spouses[0].Union.ID)
		assert.Equal(t, KindMarker, root.Spouses[2].Kind)
	})
}

func TestBuildFocalRootSelection(t *testing.T) {
	t.Run("two parents without grandparents returns the structural parent", func(t *testing.T) {
		members := []models.Person{
			person("F"),
			person("M"),
			person("A", father("F"), mother("M")),
			person("B", father("F")),
		}
		unions := []models.Union{union("u1", "M", "F")}
		root := BuildFocal(members, "A", unions)

		require.NotNil(t, root)
		assert.Equal(t, KindPerson, root.Kind)
		assert.Equal(t, "F", root.ID())
		require.Len(t, root.Spouses, 1)
		assert.Equal(t, "M", root.Spouses[0].ID())
		require.NotNil(t, root.Spouses[0].Union)
		assert.Equal(t, "u1", root.Spouses[0].Union.ID)
		assert.Equal(t, []string{"A", "B"}, ids(root.Children))
	})

	t.Run("second parent without union has no union reference", func(t *testing.T) {
		members := []models.Person{
			person("F"),
			person("M"),
			person("A", father("F"), mother("M")),
		}
		root := BuildFocal(members, "A", nil)

		require.NotNil(t, root)
		require.Len(t, root.Spouses, 1)
		assert.Nil(t, root.Spouses[0].Union)
	})

	t.Run("structural parent with a recorded parent is wrapped", func(t *testing.T) {
		members := []models.Person{
			person("GF"),
			person("F", father("GF")),
			person("A", father("F")),
		}
		root := BuildFocal(members, "A", nil)

		require.NotNil(t, root)
		assert.Equal(t, KindVirtualRoot, root.Kind)
		assert.Equal(t, ExtendedFamilyLabel, root.Label)
		assert.False(t, root.Navigable())
		require.Len(t, root.Children, 1)
		assert.Equal(t, "F", root.Children[0].ID())
	})

	t.Run("mother becomes structural when father is dangling", func(t *testing.T) {
		members := []models.Person{
			person("M"),
			person("A", father("missing"), mother("M")),
		}
		root := BuildFocal(members, "A", nil)

		require.NotNil(t, root)
		assert.Equal(t, "M", root.ID())
		assert.Nil(t, root.Spouses)
	})
}

func TestBuildFocalDepthBound(t *testing.T) {
	members := []models.Person{
		person("GGF"),
		person("GF", father("GGF")),
		person("F", father("GF")),
		person("A", father("F")),
		person("S"),
		person("C", father("A"), mother("S")),
		person("G", father("C")),
		person("GG", father("G")),
	}
	root := BuildFocal(members, "A", nil)
	require.NotNil(t, root)

	resolved := map[string]bool{}
	root.Walk(func(n *TreeNode, _ int) bool {
		if n.Navigable() {
			resolved[n.ID()] = true
		}
		return true
	})

	assert.True(t, resolved["F"])
	assert.True(t, resolved["A"])
	assert.True(t, resolved["C"])
	assert.False(t, resolved["GF"], "grandparent must not be resolved")
	assert.False(t, resolved["GGF"])
	assert.False(t, resolved["G"], "grandchild must not be resolved")
	assert.False(t, resolved["GG"])
}

func TestBuildFocalDoesNotShareSnapshot(t *testing.T) {
	members := []models.Person{person("A")}
	root := BuildFocal(members, "A", nil)
	require.NotNil(t, root)

	root.Person.FullName = "changed"
	assert.Equal(t, "Person A", members[0].FullName)
}

func TestTreeNodeJSON(t *testing.T) {
	members := []models.Person{
		person("F", father("GF")),
		person("A", father("F"), born("2001-02-03")),
	}
	root := BuildFocal(members, "A", nil)
	require.NotNil(t, root)

	raw, err := json.Marshal(root)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "virtual_root", decoded["kind"])
	assert.Equal(t, "virtual-root", decoded["key"])
	assert.Equal(t, false, decoded["navigable"])

	parent := decoded["children"].([]any)[0].(map[string]any)
	assert.Equal(t, "F", parent["id"])
	child := parent["children"].([]any)[0].(map[string]any)
	assert.Equal(t, "2001-02-03", child["birth_date"])
	assert.Equal(t, true, child["navigable"])
}
