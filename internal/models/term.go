package models

import "time"

// TermHalf selects which half of the academic year a term covers.
type TermHalf string

const (
	TermHalfFirst  TermHalf = "FIRST"
	TermHalfSecond TermHalf = "SECOND"
)

// Term is an academic half-year period defense sessions are scheduled
// within. (Year, Half) is unique and a term becomes immutable once sessions
// reference it.
type Term struct {
	ID        string    `db:"id" json:"id"`
	Year      int       `db:"year" json:"year"`
	Half      TermHalf  `db:"half" json:"half"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TermFilter defines filters supported by term list endpoints.
type TermFilter struct {
	Year      int
	Half      TermHalf
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
