package pattern

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/groundwork/internal/codetree"
	"github.com/Veraticus/groundwork/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int {
	return &i
}

func TestSuggester_Suggest(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		rules    []Rule
		want     []Suggestion
		sentence model.Sentence
	}{
		{
			name: "unclassified literal rule",
			rules: []Rule{
				{ID: 1, Pattern: "加班", FirstOrder: "经常加班", Priority: 2, IsActive: true},
			},
			sentence: model.Sentence{Text: "又加班了。"},
			want: []Suggestion{
				{
					RuleID:     intPtr(1),
					FirstOrder: "经常加班",
					Reason:     `Sentences containing "加班" are coded as "经常加班"`,
					Priority:   2,
				},
			},
		},
		{
			name: "classified regex rule with prefixes stripped",
			rules: []Rule{
				{
					ID:          4,
					Name:        "meetings",
					Pattern:     `会议`,
					IsRegex:     true,
					FirstOrder:  "A09 会议过多",
					SecondOrder: "B02 时间管理",
					ThirdOrder:  "C01 工作挑战",
					IsActive:    true,
				},
			},
			sentence: model.Sentence{Text: "会议太多。"},
			want: []Suggestion{
				{
					RuleID:      intPtr(4),
					FirstOrder:  "会议过多",
					SecondOrder: "时间管理",
					ThirdOrder:  "工作挑战",
					Reason:      `Sentences matching /会议/ are coded as "会议过多" under 工作挑战 / 时间管理 (rule meetings)`,
				},
			},
		},
		{
			name: "duplicate codes keep the highest priority rule",
			rules: []Rule{
				{ID: 1, Pattern: "加班", FirstOrder: "经常加班", Priority: 1, IsActive: true},
				{ID: 2, Pattern: "又", FirstOrder: "经常加班", Priority: 9, IsActive: true},
			},
			sentence: model.Sentence{Text: "又加班了。"},
			want: []Suggestion{
				{
					RuleID:     intPtr(2),
					FirstOrder: "经常加班",
					Reason:     `Sentences containing "又" are coded as "经常加班"`,
					Priority:   9,
				},
			},
		},
		{
			name:     "no rules",
			sentence: model.Sentence{Text: "又加班了。"},
			want:     []Suggestion{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suggester := NewSuggester(NewMatcher(tt.rules), NewValidator(codetree.DefaultLimits()))
			got, err := suggester.Suggest(ctx, tt.sentence)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type failingMatcher struct{}

func (failingMatcher) Match(context.Context, model.Sentence) ([]Rule, error) {
	return nil, errors.New("boom")
}

func TestSuggester_MatcherError(t *testing.T) {
	suggester := NewSuggester(failingMatcher{}, NewValidator(codetree.DefaultLimits()))
	_, err := suggester.Suggest(context.Background(), model.Sentence{Text: "x"})
	assert.ErrorContains(t, err, "failed to match rules")
}

func TestSuggester_SuggestWithValidation(t *testing.T) {
	ctx := context.Background()

	tree := codetree.NewDefault()
	theme, err := tree.AddThirdOrder("工作挑战")
	require.NoError(t, err)
	cat, err := tree.AddSecondOrder(theme.CodeID, "时间管理")
	require.NoError(t, err)
	_, err = tree.AddFirstOrder(cat.CodeID, "经常加班", nil)
	require.NoError(t, err)

	rules := []Rule{
		{ID: 1, Pattern: "加班", FirstOrder: "经常加班", SecondOrder: "时间管理", ThirdOrder: "工作挑战", IsActive: true},
		{ID: 2, Pattern: "加班", FirstOrder: "经常加班2", SecondOrder: "别处", ThirdOrder: "工作挑战", IsActive: true},
		{ID: 3, Pattern: "加班", FirstOrder: "经常加班", SecondOrder: "别处", ThirdOrder: "工作挑战", Priority: -1, IsActive: true},
		{ID: 4, Pattern: "加班", FirstOrder: "加班", SecondOrder: "别处", ThirdOrder: "工作挑战", IsActive: true},
	}

	suggester := NewSuggester(NewMatcher(rules), NewValidator(codetree.DefaultLimits()))
	got, err := suggester.SuggestWithValidation(ctx, model.Sentence{Text: "又加班了。"}, tree)
	require.NoError(t, err)

	var codes []string
	for _, s := range got {
		codes = append(codes, s.FirstOrder)
	}
	assert.Equal(t, []string{"经常加班", "经常加班2", "加班"}, codes)
}
