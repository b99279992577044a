package domain

import "strings"

type DeleteType int

const (
	DeleteHard DeleteType = iota + 1
	DeleteSoft
)

func (t DeleteType) String() string {
	switch t {
	case DeleteSoft:
		return "Soft"
	default:
		return "Hard"
	}
}

// ParseDeleteType accepts the name or numeric value of a delete mode.
// Anything unrecognised resolves to DeleteHard.
func ParseDeleteType(v string) DeleteType {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "soft", "2":
		return DeleteSoft
	default:
		return DeleteHard
	}
}
