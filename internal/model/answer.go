package model

import "time"

// CodeCounts holds the number of codes at each level.
type CodeCounts struct {
	Third  int `json:"third"`
	Second int `json:"second"`
	First  int `json:"first"`
}

// StandardAnswer is a named, saved coding structure used as ground truth.
type StandardAnswer struct {
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ID          string
	Name        string
	Description string
	Structure   []byte // structured-code document, JSON
	Counts      CodeCounts
}

// AnswerRevision is one incremental save of a standard answer.
type AnswerRevision struct {
	CreatedAt time.Time
	AnswerID  string
	Record    ModificationRecord
	ID        int64
}
