package codefile

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/groundwork/internal/codetree"
	"github.com/Veraticus/groundwork/internal/common"
	"github.com/Veraticus/groundwork/internal/model"
	"github.com/Veraticus/groundwork/internal/structure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyDocument = `{
  "structured_codes": {
    "C02 工作挑战": {
      "B03 时间管理": [
        "A01 时间管理是最困难的",
        {
          "content": "会议太多",
          "code_id": "A04",
          "sentence_details": [
            {"content": "每天都在开会。", "file_path": "访谈1.txt", "sentence_id": "7"}
          ]
        }
      ]
    },
    "绩效 压力": {
      "目标": ["季度目标太多"]
    }
  }
}`

func TestDecode_LegacyShapes(t *testing.T) {
	doc, err := Decode([]byte(legacyDocument), codetree.DefaultLimits())
	require.NoError(t, err)
	tree := doc.Tree

	themes := tree.Themes()
	require.Len(t, themes, 2)
	assert.Equal(t, "C02", themes[0].CodeID)
	assert.Equal(t, "工作挑战", themes[0].Name)
	assert.Equal(t, "绩效 压力", themes[1].Name)
	assert.Equal(t, "C03", themes[1].CodeID)

	cat := tree.Category("B03")
	require.NotNil(t, cat)
	assert.Equal(t, "时间管理", cat.Name)

	plain := tree.EntryByContent("时间管理是最困难的")
	require.NotNil(t, plain)
	assert.Equal(t, "A01", plain.CodeID)
	assert.Equal(t, 1, plain.SentenceCount)

	rich := tree.Entry("A04")
	require.NotNil(t, rich)
	assert.Equal(t, "会议太多", rich.Content)
	require.Len(t, rich.SentenceDetails, 1)
	assert.Equal(t, model.SentenceRecord{Text: "每天都在开会。", FilePath: "访谈1.txt", SentenceID: 7}, rich.SentenceDetails[0])

	minted := tree.EntryByContent("季度目标太多")
	require.NotNil(t, minted)
	assert.Equal(t, "A05", minted.CodeID)
}

func TestDecode_UnspacedPrefixes(t *testing.T) {
	doc, err := Decode([]byte(`{"structured_codes":{"C01工作挑战":{"B01时间管理":["A01时间管理是最困难的"]}},
		"unclassified_codes":[]}`), codetree.DefaultLimits())
	require.NoError(t, err)

	theme := doc.Tree.Theme("C01")
	require.NotNil(t, theme)
	assert.Equal(t, "工作挑战", theme.Name)
	cat := doc.Tree.Category("B01")
	require.NotNil(t, cat)
	assert.Equal(t, "时间管理", cat.Name)
	entry := doc.Tree.Entry("A01")
	require.NotNil(t, entry)
	assert.Equal(t, "时间管理是最困难的", entry.Content)

	session := codetree.NewDefault()
	sessionTheme, err := session.AddThirdOrder("工作挑战")
	require.NoError(t, err)
	sessionCat, err := session.AddSecondOrder(sessionTheme.CodeID, "时间管理")
	require.NoError(t, err)
	_, err = session.AddFirstOrder(sessionCat.CodeID, "时间管理是最困难的", nil)
	require.NoError(t, err)
	assert.False(t, structure.Diff(doc.Tree, session).HasChanges)
}

func TestDecode_KeyWithoutIdentifierIsCleaned(t *testing.T) {
	doc, err := Decode([]byte(`{"structured_codes":{"C 工作挑战":{"B时间管理":[]}}}`), codetree.DefaultLimits())
	require.NoError(t, err)

	themes := doc.Tree.Themes()
	require.Len(t, themes, 1)
	assert.Equal(t, codetree.CleanName("C 工作挑战"), themes[0].Name)
	assert.Equal(t, "工作挑战", themes[0].Name)
	require.Len(t, themes[0].Categories, 1)
	assert.Equal(t, "时间管理", themes[0].Categories[0].Name)
}

func TestSave_ReplacesFileWithoutLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codes.json")
	tree := codetree.NewDefault()
	_, err := tree.AddThirdOrder("工作挑战")
	require.NoError(t, err)

	require.NoError(t, Save(path, &Document{Tree: tree}))
	_, err = tree.AddThirdOrder("团队沟通")
	require.NoError(t, err)
	require.NoError(t, Save(path, &Document{Tree: tree}))

	loaded, err := Load(path, codetree.DefaultLimits())
	require.NoError(t, err)
	assert.Len(t, loaded.Tree.Themes(), 2)
	assert.NoFileExists(t, path+".tmp")
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "structured_codes"},
		{name: "missing structured codes", data: `{"metadata": {}}`},
		{name: "theme is not an object", data: `{"structured_codes": {"主题": []}}`},
		{name: "category is not a list", data: `{"structured_codes": {"主题": {"类别": 3}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data), codetree.DefaultLimits())
			assert.ErrorIs(t, err, common.ErrInvalidFormat)
		})
	}
}

func TestEncode_DisplayKeysInTreeOrder(t *testing.T) {
	tree := codetree.NewDefault()
	zTheme, err := tree.AddThirdOrder("总结")
	require.NoError(t, err)
	aTheme, err := tree.AddThirdOrder("阿")
	require.NoError(t, err)
	cat, err := tree.AddSecondOrder(zTheme.CodeID, "感受")
	require.NoError(t, err)
	_, err = tree.AddSecondOrder(aTheme.CodeID, "空")
	require.NoError(t, err)
	_, err = tree.AddFirstOrder(cat.CodeID, "很累 <真的>", nil)
	require.NoError(t, err)

	data, err := Encode(&Document{Tree: tree, Metadata: Metadata{Name: "第一轮"}})
	require.NoError(t, err)
	text := string(data)

	assert.Less(t, strings.Index(text, `"C01 总结"`), strings.Index(text, `"C02 阿"`))
	assert.Contains(t, text, `"B01 感受": [`)
	assert.Contains(t, text, `"content": "很累 <真的>"`)
	assert.Contains(t, text, `"sentence_details": []`)
	assert.Contains(t, text, "\n  \"structured_codes\": {")
	assert.Contains(t, text, `"third": 2`)
}

func TestDocument_RoundTrip(t *testing.T) {
	doc, err := Decode([]byte(legacyDocument), codetree.DefaultLimits())
	require.NoError(t, err)
	_, err = doc.Tree.AddUnclassifiedFirstOrder("待分类", []model.SentenceRecord{{Text: "还没想好。", SentenceID: 2}})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "answer.json")
	require.NoError(t, Save(path, doc))

	loaded, err := Load(path, codetree.DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, doc.Tree.Snapshot(), loaded.Tree.Snapshot())
	assert.Equal(t, model.CodeCounts{Third: 2, Second: 2, First: 4}, loaded.Metadata.Counts)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"), codetree.DefaultLimits())
	assert.Error(t, err)
}

func TestRecord_RoundTrip(t *testing.T) {
	original := codetree.FromStructured(model.ThemeEntries{"工作挑战": {"时间管理": {{Content: "经常加班"}}}}, codetree.DefaultLimits())
	modified := codetree.FromStructured(model.ThemeEntries{"工作挑战": {"时间管理": {{Content: "经常加班"}, {Content: "会议太多"}}}}, codetree.DefaultLimits())
	rec := structure.Diff(original, modified)

	path := filepath.Join(t.TempDir(), "record.json")
	require.NoError(t, SaveRecord(path, rec))
	loaded, err := LoadRecord(path)
	require.NoError(t, err)

	assert.True(t, loaded.HasChanges)
	assert.Equal(t, model.ModificationSummary{AddedCodes: 1}, loaded.Summary)
	require.Len(t, loaded.Modified["工作挑战"].Modified["时间管理"].Added, 1)
	assert.Equal(t, "会议太多", loaded.Modified["工作挑战"].Modified["时间管理"].Added[0].Content)
}

func TestDecodeRecord_StripsDisplayPrefixes(t *testing.T) {
	rec, err := DecodeRecord([]byte(`{
		"added": {"C01 工作挑战": {"B02 时间管理": ["A03 时间不够"]}},
		"modified": {"C02团队": {"added": {}, "deleted": {}, "modified": {"B03沟通": {"added": ["A04沟通太少"], "deleted": []}}}},
		"deleted": {},
		"summary": {"added_codes": 1, "modified_codes": 0, "deleted_codes": 0},
		"has_changes": true
	}`))
	require.NoError(t, err)

	entries := rec.Added["工作挑战"]["时间管理"]
	require.Len(t, entries, 1)
	assert.Equal(t, "时间不够", entries[0].Content)
	assert.Equal(t, "A03", entries[0].CodeID)

	change, ok := rec.Modified["团队"]
	require.True(t, ok)
	added := change.Modified["沟通"].Added
	require.Len(t, added, 1)
	assert.Equal(t, "沟通太少", added[0].Content)
}
