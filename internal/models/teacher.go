package models

import "time"

// TeacherDegree is the academic degree held by a faculty member.
type TeacherDegree string

const (
	DegreeMaster TeacherDegree = "MASTER"
	DegreePhD    TeacherDegree = "PHD"
)

// Teacher is a faculty member. The same teacher may serve as a supervisor,
// consultant, graduate monitor or judge; the role only exists per session.
type Teacher struct {
	ID           string        `db:"id" json:"id"`
	FirstName    string        `db:"first_name" json:"first_name"`
	LastName     string        `db:"last_name" json:"last_name"`
	Email        string        `db:"email" json:"email"`
	PhoneNumber  string        `db:"phone_number" json:"phone_number"`
	NationalCode string        `db:"national_code" json:"national_code"`
	FacultyCode  string        `db:"faculty_code" json:"faculty_code"`
	Degree       TeacherDegree `db:"degree" json:"degree"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

// FullName joins the teacher's name parts for display and audit snapshots.
func (t Teacher) FullName() string {
	return t.FirstName + " " + t.LastName
}

// TeacherFilter captures filtering criteria for listing teachers.
type TeacherFilter struct {
	Search    string
	Degree    TeacherDegree
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
