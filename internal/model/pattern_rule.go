package model

import (
	"time"
)

// CodingRule is a user-defined rule that suggests a first-order code for
// sentences whose text matches Pattern.
type CodingRule struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `json:"name"`
	Pattern     string    `json:"pattern"`
	FirstOrder  string    `json:"first_order"`
	SecondOrder string    `json:"second_order,omitempty"`
	ThirdOrder  string    `json:"third_order,omitempty"`
	Priority    int       `json:"priority"`
	ID          int       `json:"id"`
	UseCount    int       `json:"use_count"`
	IsActive    bool      `json:"is_active"`
	IsRegex     bool      `json:"is_regex"`
}

// Classified reports whether the rule places its code under a category.
func (r CodingRule) Classified() bool {
	return r.SecondOrder != "" && r.ThirdOrder != ""
}
