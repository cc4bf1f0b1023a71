package structure

import (
	"sort"
	"testing"

	"github.com/Veraticus/groundwork/internal/codetree"
	"github.com/Veraticus/groundwork/internal/common"
	"github.com/Veraticus/groundwork/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// contents reduces a structure to sorted content per category so two
// trees can be compared regardless of ids and order.
func contents(structured model.ThemeEntries) map[string]map[string][]string {
	out := make(map[string]map[string][]string, len(structured))
	for theme, cats := range structured {
		out[theme] = make(map[string][]string, len(cats))
		for cat, es := range cats {
			list := make([]string, 0, len(es))
			for _, e := range es {
				list = append(list, e.Content)
			}
			sort.Strings(list)
			out[theme][cat] = list
		}
	}
	return out
}

func TestMerge_RoundTrip(t *testing.T) {
	tests := []struct {
		a    model.ThemeEntries
		b    model.ThemeEntries
		name string
	}{
		{
			name: "code added",
			a:    model.ThemeEntries{"C01": {"B01": entries("x")}},
			b:    model.ThemeEntries{"C01": {"B01": entries("x", "y")}},
		},
		{
			name: "theme replaced",
			a:    model.ThemeEntries{"团队": {"沟通": entries("a", "b")}},
			b:    model.ThemeEntries{"工作": {"时间": entries("c")}},
		},
		{
			name: "code moved between categories",
			a:    model.ThemeEntries{"团队": {"沟通": entries("a", "b"), "协作": entries("c")}},
			b:    model.ThemeEntries{"团队": {"沟通": entries("a"), "协作": entries("c", "b")}},
		},
		{
			name: "code moved between themes",
			a:    model.ThemeEntries{"团队": {"沟通": entries("a", "b")}},
			b:    model.ThemeEntries{"团队": {"沟通": entries("a")}, "工作": {"时间": entries("b")}},
		},
		{
			name: "content edited and empty category added",
			a:    model.ThemeEntries{"团队": {"沟通": entries("a")}},
			b:    model.ThemeEntries{"团队": {"沟通": entries("a2"), "待定": {}}},
		},
		{
			name: "everything deleted",
			a:    model.ThemeEntries{"团队": {"沟通": entries("a")}},
			b:    model.ThemeEntries{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := codetree.FromStructured(tt.a, codetree.DefaultLimits())
			target := codetree.FromStructured(tt.b, codetree.DefaultLimits())

			rec := Diff(original, target)
			merged, err := Merge(original, rec)
			require.NoError(t, err)

			assert.Equal(t, contents(target.Structured()), contents(merged.Structured()))
			assert.False(t, Diff(merged, target).HasChanges)
		})
	}
}

func TestMerge_ReapplyIsNoop(t *testing.T) {
	original := codetree.FromStructured(
		model.ThemeEntries{"团队": {"沟通": entries("a", "b")}},
		codetree.DefaultLimits(),
	)
	target := codetree.FromStructured(
		model.ThemeEntries{"团队": {"沟通": entries("a", "c")}, "工作": {"时间": entries("d")}},
		codetree.DefaultLimits(),
	)
	rec := Diff(original, target)

	once, err := Merge(original, rec)
	require.NoError(t, err)
	twice, err := Merge(once, rec)
	require.NoError(t, err)

	assert.Equal(t, once.Snapshot(), twice.Snapshot())
}

func TestMerge_LeavesOriginalUntouched(t *testing.T) {
	original := codetree.FromStructured(
		model.ThemeEntries{"团队": {"沟通": entries("a")}},
		codetree.DefaultLimits(),
	)
	before := original.Snapshot()

	rec := model.NewModificationRecord()
	rec.Added["工作"] = model.CategoryEntries{"时间": entries("b")}
	rec.Deleted["团队"] = model.CategoryEntries{"沟通": entries("a")}

	merged, err := Merge(original, rec)
	require.NoError(t, err)
	assert.Equal(t, before, original.Snapshot())
	assert.NotNil(t, merged.ThemeByName("工作"))
	assert.Nil(t, merged.ThemeByName("团队"))
}

func TestMerge_KeepsIncomingIdentifiers(t *testing.T) {
	original := codetree.NewDefault()
	theme, err := original.AddThirdOrder("团队")
	require.NoError(t, err)
	cat, err := original.AddSecondOrder(theme.CodeID, "沟通")
	require.NoError(t, err)
	_, err = original.AddFirstOrder(cat.CodeID, "a", nil)
	require.NoError(t, err)

	rec := model.NewModificationRecord()
	rec.Modified["团队"] = model.ThemeChange{
		Modified: map[string]model.CategoryChange{
			"沟通": {Added: []model.CodeEntry{
				{Content: "free", CodeID: "A07", SentenceCount: 1},
				{Content: "taken", CodeID: "A01", SentenceCount: 1},
			}},
		},
	}

	merged, err := Merge(original, rec)
	require.NoError(t, err)
	assert.Equal(t, "A07", merged.EntryByContent("free").CodeID)
	assert.Equal(t, "A08", merged.EntryByContent("taken").CodeID)
}

func TestMerge_ClassifiesUnclassifiedContent(t *testing.T) {
	original := codetree.NewDefault()
	loose, err := original.AddUnclassifiedFirstOrder("沟通不畅", []model.SentenceRecord{
		{Text: "沟通不畅。", FilePath: "访谈1.txt", SentenceID: 1},
	})
	require.NoError(t, err)

	rec := model.NewModificationRecord()
	rec.Added["团队"] = model.CategoryEntries{"沟通": []model.CodeEntry{{
		Content: "沟通不畅",
		SentenceDetails: []model.SentenceRecord{
			{Text: "又是沟通问题。", FilePath: "访谈2.txt", SentenceID: 9},
		},
		SentenceCount: 1,
	}}}

	merged, err := Merge(original, rec)
	require.NoError(t, err)
	assert.Empty(t, merged.Unclassified())

	entry := merged.EntryByContent("沟通不畅")
	require.NotNil(t, entry)
	assert.Equal(t, loose.CodeID, entry.CodeID)
	require.NotNil(t, entry.Parent())
	assert.Equal(t, "沟通", entry.Parent().Name)
	assert.Equal(t, []int{1, 9}, entry.SentenceSources())
	assert.Equal(t, 2, entry.SentenceCount)
}

func TestMerge_PreservesCapitalisedNames(t *testing.T) {
	original := codetree.NewDefault()
	target := codetree.FromStructured(
		model.ThemeEntries{"KPI 压力": {"OKR": entries("季度目标太多")}},
		codetree.DefaultLimits(),
	)

	merged, err := Merge(original, Diff(original, target))
	require.NoError(t, err)
	assert.NotNil(t, merged.ThemeByName("KPI 压力"))
	assert.False(t, Diff(merged, target).HasChanges)
}

func TestMerge_RejectsInvalidContent(t *testing.T) {
	original := codetree.New(codetree.Limits{MaxFirstOrder: 5, MaxCategory: 100})

	rec := model.NewModificationRecord()
	rec.Added["团队"] = model.CategoryEntries{"沟通": entries("这一条内容明显超过了长度限制")}

	merged, err := Merge(original, rec)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Nil(t, merged)
	assert.True(t, original.Empty())
}
