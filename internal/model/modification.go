package model

// CategoryChange lists first-order content added to or removed from a
// category present in both structures.
type CategoryChange struct {
	Added   []CodeEntry `json:"added"`
	Deleted []CodeEntry `json:"deleted"`
}

// Empty reports whether the change carries nothing.
func (c CategoryChange) Empty() bool {
	return len(c.Added) == 0 && len(c.Deleted) == 0
}

// ThemeChange describes the differences inside a theme present in both
// structures.
type ThemeChange struct {
	Added    CategoryEntries           `json:"added"`
	Modified map[string]CategoryChange `json:"modified"`
	Deleted  CategoryEntries           `json:"deleted"`
}

// Empty reports whether the change carries nothing.
func (c ThemeChange) Empty() bool {
	return len(c.Added) == 0 && len(c.Modified) == 0 && len(c.Deleted) == 0
}

// ModificationSummary counts first-order codes touched by a modification.
type ModificationSummary struct {
	AddedCodes    int `json:"added_codes"`
	ModifiedCodes int `json:"modified_codes"`
	DeletedCodes  int `json:"deleted_codes"`
}

// Total returns the sum of all counters.
func (s ModificationSummary) Total() int {
	return s.AddedCodes + s.ModifiedCodes + s.DeletedCodes
}

// ModificationRecord is the difference between two coding structures,
// keyed by cleaned names.
type ModificationRecord struct {
	Added      ThemeEntries           `json:"added"`
	Modified   map[string]ThemeChange `json:"modified"`
	Deleted    ThemeEntries           `json:"deleted"`
	Summary    ModificationSummary    `json:"summary"`
	HasChanges bool                   `json:"has_changes"`
}

// NewModificationRecord returns a record with all maps allocated.
func NewModificationRecord() ModificationRecord {
	return ModificationRecord{
		Added:    ThemeEntries{},
		Modified: map[string]ThemeChange{},
		Deleted:  ThemeEntries{},
	}
}
