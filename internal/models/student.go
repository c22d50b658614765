package models

import "time"

// StudentStatus tracks whether a student has defended yet.
type StudentStatus string

const (
	StudentStatusCurrent  StudentStatus = "CURRENT"
	StudentStatusDefended StudentStatus = "DEFENDED"
)

// StudentDegreeLevel is the program level the student defends in.
type StudentDegreeLevel string

const (
	DegreeLevelMaster StudentDegreeLevel = "MASTER"
	DegreeLevelPhD    StudentDegreeLevel = "PHD"
)

// Student is a graduate student. Records are created once from the registrar
// feed; only the graduation status may change afterwards.
type Student struct {
	ID            string             `db:"id" json:"id"`
	FirstName     string             `db:"first_name" json:"first_name"`
	LastName      string             `db:"last_name" json:"last_name"`
	Email         string             `db:"email" json:"email"`
	PhoneNumber   string             `db:"phone_number" json:"phone_number"`
	StudentNumber string             `db:"student_number" json:"student_number"`
	DegreeLevel   StudentDegreeLevel `db:"degree_level" json:"degree_level"`
	Status        StudentStatus      `db:"status" json:"status"`
	AdmissionYear int                `db:"admission_year" json:"admission_year"`
	CreatedAt     time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `db:"updated_at" json:"updated_at"`
}

// FullName joins the student's name parts for display.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// StudentFilter captures filtering criteria for listing students.
type StudentFilter struct {
	Search        string
	Status        StudentStatus
	DegreeLevel   StudentDegreeLevel
	AdmissionYear int
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}
