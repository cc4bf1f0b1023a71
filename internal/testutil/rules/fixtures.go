package rules

import "github.com/Veraticus/groundwork/internal/model"

// Fixture represents a predefined set of rules for testing.
type Fixture interface {
	// Name returns the fixture's descriptive name.
	Name() string

	// Rules returns copies of the rules in this fixture.
	Rules() []model.CodingRule
}

type fixture struct {
	name  string
	rules []model.CodingRule
}

func (f *fixture) Name() string { return f.name }

func (f *fixture) Rules() []model.CodingRule {
	out := make([]model.CodingRule, len(f.rules))
	copy(out, f.rules)
	return out
}

// Predefined fixtures for common test scenarios.
var (
	// FixtureWorkplace covers the workplace-interview examples used across
	// tests: overtime and meetings under 工作挑战 / 时间管理.
	FixtureWorkplace Fixture = &fixture{
		name: "Workplace",
		rules: []model.CodingRule{
			Classified("加班", "经常加班", "时间管理", "工作挑战"),
			Classified("会议", "会议过多", "时间管理", "工作挑战"),
			{
				Name:       "沟通",
				Pattern:    `沟通|交流`,
				IsRegex:    true,
				FirstOrder: "沟通不畅",
				Priority:   1,
				IsActive:   true,
			},
		},
	}

	// FixtureInactive holds a rule that is switched off.
	FixtureInactive Fixture = &fixture{
		name: "Inactive",
		rules: []model.CodingRule{
			{Name: "off", Pattern: "休假", FirstOrder: "休假不足"},
		},
	}
)
