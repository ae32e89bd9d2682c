package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = "testdata/family.yaml"

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestTreeCommand(t *testing.T) {
	out, _, err := run(t, "tree", "--data", fixture, "--focal", "p-george")
	require.NoError(t, err)

	var tree struct {
		Kind    string `json:"kind"`
		ID      string `json:"id"`
		Spouses []struct {
			ID string `json:"id"`
		} `json:"spouses"`
		Children []struct {
			ID string `json:"id"`
		} `json:"children"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &tree))
	assert.Equal(t, "person", tree.Kind)
	assert.Equal(t, "p-arthur", tree.ID, "father is the structural root")
	require.Len(t, tree.Spouses, 1)
	assert.Equal(t, "p-edith", tree.Spouses[0].ID)

	var ids []string
	for _, c := range tree.Children {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"p-george", "p-mary"}, ids, "focal first, then siblings")
}

func TestTreeCommandUnknownPerson(t *testing.T) {
	_, _, err := run(t, "tree", "--data", fixture, "--focal", "nobody")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestTreeCommandRequiresFocal(t *testing.T) {
	_, _, err := run(t, "tree", "--data", fixture)
	require.Error(t, err)
}

func TestAncestorsCommand(t *testing.T) {
	out, _, err := run(t, "ancestors", "--data", fixture)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Arthur Hale")
	assert.Contains(t, lines[0], "1920-03-04")
	assert.Contains(t, lines[1], "Rose Kerr")
}

func TestAncestorsCommandJSON(t *testing.T) {
	out, _, err := run(t, "ancestors", "--data", fixture, "--json")
	require.NoError(t, err)
	var people []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &people))
	require.Len(t, people, 2)
	assert.Equal(t, "p-arthur", people[0].ID)
}

func TestReportCommandToStdout(t *testing.T) {
	out, _, err := run(t, "report", "--data", fixture, "--root", "p-george", "--format", "outline")
	require.NoError(t, err)
	assert.Contains(t, out, "George Hale")
	assert.Contains(t, out, "Lily Hale")
	assert.NotContains(t, out, "Mary Hale", "siblings are not descendants of the root")
}

func TestReportCommandAllAncestorsToFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "report.html")
	_, errOut, err := run(t, "report", "--data", fixture, "--format", "list", "--out", dest)
	require.NoError(t, err)
	assert.Contains(t, errOut, dest)

	body, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<html")
	assert.Contains(t, string(body), "Mary Hale")
	assert.Contains(t, string(body), "Rose Kerr")
}

func TestReportCommandRejectsFormat(t *testing.T) {
	_, _, err := run(t, "report", "--data", fixture, "--format", "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported report format")
}

func TestMissingDataFile(t *testing.T) {
	_, _, err := run(t, "ancestors", "--data", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
