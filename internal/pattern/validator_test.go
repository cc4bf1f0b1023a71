package pattern

import (
	"context"
	"strings"
	"testing"

	"github.com/Veraticus/groundwork/internal/codetree"
	"github.com/Veraticus/groundwork/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_ValidateRule(t *testing.T) {
	validator := NewValidator(codetree.Limits{MaxFirstOrder: 10, MaxCategory: 4})

	tests := []struct {
		name    string
		errMsg  string
		rule    Rule
		wantErr bool
	}{
		{
			name: "literal unclassified rule",
			rule: Rule{Pattern: "加班", FirstOrder: "经常加班"},
		},
		{
			name: "classified regex rule",
			rule: Rule{Pattern: `加班|熬夜`, IsRegex: true, FirstOrder: "经常加班", SecondOrder: "时间", ThirdOrder: "挑战"},
		},
		{
			name:    "empty pattern",
			rule:    Rule{FirstOrder: "经常加班"},
			wantErr: true,
			errMsg:  "pattern cannot be empty",
		},
		{
			name:    "bad regex",
			rule:    Rule{Pattern: "(", IsRegex: true, FirstOrder: "经常加班"},
			wantErr: true,
			errMsg:  "invalid regex",
		},
		{
			name:    "missing code",
			rule:    Rule{Pattern: "加班", FirstOrder: "A01 "},
			wantErr: true,
			errMsg:  "must name a first-order code",
		},
		{
			name:    "code too long",
			rule:    Rule{Pattern: "加班", FirstOrder: strings.Repeat("长", 11)},
			wantErr: true,
			errMsg:  "limit is 10",
		},
		{
			name:    "category without theme",
			rule:    Rule{Pattern: "加班", FirstOrder: "经常加班", SecondOrder: "时间"},
			wantErr: true,
			errMsg:  "given together",
		},
		{
			name:    "theme name too long",
			rule:    Rule{Pattern: "加班", FirstOrder: "经常加班", SecondOrder: "时间", ThirdOrder: "工作上的挑战"},
			wantErr: true,
			errMsg:  "limit is 4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateRule(tt.rule)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrValidation)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidator_ValidatePlacement(t *testing.T) {
	ctx := context.Background()
	validator := NewValidator(codetree.DefaultLimits())

	tree := codetree.NewDefault()
	theme, err := tree.AddThirdOrder("工作挑战")
	require.NoError(t, err)
	cat, err := tree.AddSecondOrder(theme.CodeID, "时间管理")
	require.NoError(t, err)
	_, err = tree.AddFirstOrder(cat.CodeID, "经常加班", nil)
	require.NoError(t, err)
	_, err = tree.AddUnclassifiedFirstOrder("待定", nil)
	require.NoError(t, err)

	tests := []struct {
		name       string
		suggestion Suggestion
		wantErr    bool
	}{
		{name: "new code", suggestion: Suggestion{FirstOrder: "新的", SecondOrder: "x", ThirdOrder: "y"}},
		{name: "same place", suggestion: Suggestion{FirstOrder: "经常加班", SecondOrder: "时间管理", ThirdOrder: "工作挑战"}},
		{name: "unclassified suggestion", suggestion: Suggestion{FirstOrder: "经常加班"}},
		{name: "pending code gets classified", suggestion: Suggestion{FirstOrder: "待定", SecondOrder: "x", ThirdOrder: "y"}},
		{name: "other category", suggestion: Suggestion{FirstOrder: "经常加班", SecondOrder: "沟通", ThirdOrder: "工作挑战"}, wantErr: true},
		{name: "other theme", suggestion: Suggestion{FirstOrder: "经常加班", SecondOrder: "时间管理", ThirdOrder: "生活"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidatePlacement(ctx, tt.suggestion, tree)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrStructural)
				return
			}
			assert.NoError(t, err)
		})
	}
}
