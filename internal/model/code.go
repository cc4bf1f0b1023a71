package model

import (
	"fmt"
	"strconv"
)

// Level identifies a tier of the coding hierarchy by its identifier letter.
type Level byte

// Coding levels.
const (
	LevelFirst  Level = 'A'
	LevelSecond Level = 'B'
	LevelThird  Level = 'C'
)

// String returns a human readable level name.
func (l Level) String() string {
	switch l {
	case LevelFirst:
		return "first-order"
	case LevelSecond:
		return "second-order"
	case LevelThird:
		return "third-order"
	default:
		return fmt.Sprintf("level(%c)", byte(l))
	}
}

// Valid reports whether l is one of the three coding levels.
func (l Level) Valid() bool {
	return l == LevelFirst || l == LevelSecond || l == LevelThird
}

// FormatCodeID builds an identifier such as "A07". Numbers above 99 keep
// all their digits ("A100").
func FormatCodeID(level Level, n int) string {
	return fmt.Sprintf("%c%02d", byte(level), n)
}

// ParseCodeID splits an identifier into its level and numeric suffix.
// Any number of digits is accepted after the letter.
func ParseCodeID(id string) (Level, int, bool) {
	if len(id) < 2 {
		return 0, 0, false
	}
	level := Level(id[0])
	if level < 'A' || level > 'Z' {
		return 0, 0, false
	}
	digits := id[1:]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, 0, false
	}
	return level, n, true
}

// LevelOf returns the level encoded in an identifier, or 0 when the
// identifier is not one of A/B/C.
func LevelOf(id string) Level {
	level, _, ok := ParseCodeID(id)
	if !ok || !level.Valid() {
		return 0
	}
	return level
}
