package cli

import (
	"strings"
	"testing"

	"github.com/Veraticus/groundwork/internal/codetree"
	"github.com/Veraticus/groundwork/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree(t *testing.T) *codetree.Tree {
	t.Helper()
	tree := codetree.NewDefault()
	theme, err := tree.AddThirdOrder("工作挑战")
	require.NoError(t, err)
	cat, err := tree.AddSecondOrder(theme.CodeID, "时间管理")
	require.NoError(t, err)
	_, err = tree.AddFirstOrder(cat.CodeID, "经常加班", []model.SentenceRecord{{SentenceID: 3}, {SentenceID: 1}})
	require.NoError(t, err)
	_, err = tree.AddFirstOrder(cat.CodeID, "会议过多", nil)
	require.NoError(t, err)
	_, err = tree.AddUnclassifiedFirstOrder("沟通不畅", nil)
	require.NoError(t, err)
	return tree
}

func TestRenderTree(t *testing.T) {
	out := RenderTree(sampleTree(t), TreeOptions{})
	lines := strings.Split(out, "\n")

	assert.Equal(t, []string{
		"C01 工作挑战",
		"└── B01 时间管理",
		"    ├── A01 经常加班",
		"    └── A02 会议过多",
		"",
		"Unclassified",
		"└── A03 沟通不畅",
		"1 themes, 1 categories, 3 codes",
	}, lines)
}

func TestRenderTree_Sentences(t *testing.T) {
	out := RenderTree(sampleTree(t), TreeOptions{ShowSentences: true})
	assert.Contains(t, out, "A01 经常加班 [1] [3]")
	assert.Contains(t, out, "A02 会议过多\n")
}

func TestRenderTree_Empty(t *testing.T) {
	assert.Equal(t, "0 themes, 0 categories, 0 codes", RenderTree(codetree.NewDefault(), TreeOptions{}))
}

func TestRenderRecord(t *testing.T) {
	rec := model.NewModificationRecord()
	rec.Added["人际关系"] = model.CategoryEntries{"团队协作": {{Content: "沟通不畅"}}}
	rec.Modified["工作挑战"] = model.ThemeChange{
		Modified: map[string]model.CategoryChange{
			"时间管理": {Deleted: []model.CodeEntry{{Content: "会议过多"}}},
		},
	}
	rec.Summary = model.ModificationSummary{AddedCodes: 1, DeletedCodes: 1}
	rec.HasChanges = true

	out := RenderRecord(rec)
	assert.Contains(t, out, "+ 人际关系 / 团队协作 / 沟通不畅")
	assert.Contains(t, out, "- 工作挑战 / 时间管理 / 会议过多")
	assert.Contains(t, out, "1 added, 0 modified, 1 deleted")

	assert.Contains(t, RenderRecord(model.NewModificationRecord()), "No changes")
}
