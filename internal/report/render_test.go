package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinfolk/internal/family/models"
	"kinfolk/internal/hierarchy"
	dErrors "kinfolk/pkg/domain-errors"
)

func sampleTree() []*hierarchy.ReportNode {
	ada := models.Person{ID: "ada", FullName: "Ada Lovelace", BirthDate: models.MustDate("1815-12-10"), DeathDate: models.MustDate("1852-11-27")}
	william := models.Person{ID: "william", FullName: "William King"}
	byron := models.Person{ID: "byron", FullName: "Byron <King>", BirthDate: models.MustDate("1836-05-12")}
	annabella := models.Person{ID: "annabella", FullName: "Annabella King"}
	wife := models.Person{ID: "wife", FullName: "Jane Doe", BirthDate: models.MustDate("1840-01-01")}

	return []*hierarchy.ReportNode{{
		Person:  ada,
		Spouses: []models.Person{william},
		Children: []*hierarchy.ReportNode{
			{Person: byron, Spouses: []models.Person{wife}, Children: []*hierarchy.ReportNode{}},
			{Person: annabella, Spouses: []models.Person{}, Children: []*hierarchy.ReportNode{}},
		},
	}}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatVisual, "visual": FormatVisual, "LIST": FormatList, " outline ": FormatOutline} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("pdf")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestRenderVisual(t *testing.T) {
	doc, err := NewRenderer().Render(FormatVisual, sampleTree())
	require.NoError(t, err)

	body := string(doc.Body)
	assert.Equal(t, "text/html; charset=utf-8", doc.ContentType)
	assert.Equal(t, "Family Tree Ancestor Report", doc.Title)
	assert.Contains(t, body, "<title>Family Tree Ancestor Report</title>")
	assert.Contains(t, body, "<h1>Family Generation Report</h1>")
	assert.Contains(t, body, "Lineage of Ada Lovelace")
	assert.Contains(t, body, `class="couple-connector"`)
	assert.Contains(t, body, "1815-12-10 - 1852-11-27")
	assert.Contains(t, body, "Unknown - Present")
	assert.Contains(t, body, "m. Jane Doe")
	assert.Contains(t, body, "Byron &lt;King&gt;")
	assert.NotContains(t, body, "Byron <King>")
	assert.NotContains(t, body, "<script")
	assert.NotContains(t, body, "http://")
	assert.NotContains(t, body, "https://")

	// William is drawn beside Ada, not as an inline spouse.
	assert.NotContains(t, body, "m. William King")
	assert.Equal(t, 1, strings.Count(body, "couple-container\""))
}

func TestRenderList(t *testing.T) {
	doc, err := NewRenderer().Render(FormatList, sampleTree())
	require.NoError(t, err)

	body := string(doc.Body)
	assert.Equal(t, "Family Tree Text Report", doc.Title)
	assert.Contains(t, body, "Family of Ada Lovelace")
	assert.Contains(t, body, `style="margin-left: 0px;"`)
	assert.Contains(t, body, `style="margin-left: 30px;"`)
	assert.Contains(t, body, "[Spouse(s): William King (Unknown - Present)]")
	assert.Contains(t, body, "[Spouse(s): Jane Doe (1840-01-01 - Present)]")
	assert.Equal(t, 3, strings.Count(body, `class="text-node"`))
}

func TestRenderOutline(t *testing.T) {
	doc, err := NewRenderer().Render(FormatOutline, sampleTree())
	require.NoError(t, err)

	want := strings.Join([]string{
		"Family Tree Text Report",
		"",
		"Family of Ada Lovelace",
		"Ada Lovelace (1815-12-10 - 1852-11-27) [Spouse(s): William King (Unknown - Present)]",
		"├── Byron <King> (1836-05-12 - Present) [Spouse(s): Jane Doe (1840-01-01 - Present)]",
		"└── Annabella King (Unknown - Present)",
		"",
	}, "\n")
	assert.Equal(t, want, string(doc.Body))
	assert.Equal(t, "text/plain; charset=utf-8", doc.ContentType)
}

func TestRenderUnknownFormat(t *testing.T) {
	_, err := NewRenderer().Render(Format("pdf"), sampleTree())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestRenderDoesNotMutateRoots(t *testing.T) {
	roots := sampleTree()
	before := roots[0].Size()

	_, err := NewRenderer().Render(FormatVisual, roots)
	require.NoError(t, err)

	assert.Equal(t, before, roots[0].Size())
	assert.Len(t, roots[0].Spouses, 1)
}
