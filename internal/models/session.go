package models

import "time"

// SessionRole identifies the slot a teacher occupies within one session.
type SessionRole string

const (
	RoleSupervisor1     SessionRole = "SUPERVISOR_1"
	RoleSupervisor2     SessionRole = "SUPERVISOR_2"
	RoleSupervisor3     SessionRole = "SUPERVISOR_3"
	RoleSupervisor4     SessionRole = "SUPERVISOR_4"
	RoleGraduateMonitor SessionRole = "GRADUATE_MONITOR"
	RoleJudge           SessionRole = "JUDGE"
)

// MaxJudges caps judge assignments per session.
const MaxJudges = 3

// Classrooms is the closed set of physical defense classrooms.
func Classrooms() []string {
	return []string{"1", "2", "3", "4", "5", "6", "7", "8"}
}

// Session is a scheduled thesis-defense event: one student defending before
// supervisors, a graduate monitor and judges inside a classroom time slot.
type Session struct {
	ID            string    `db:"id" json:"id"`
	TermID        string    `db:"term_id" json:"term_id"`
	Date          time.Time `db:"date" json:"date"`
	StartTime     string    `db:"start_time" json:"start_time"`
	EndTime       string    `db:"end_time" json:"end_time"`
	Classroom     string    `db:"classroom" json:"classroom"`
	StudentID     string    `db:"student_id" json:"student_id"`
	Supervisor1ID string    `db:"supervisor1_id" json:"supervisor1_id"`
	Supervisor2ID *string   `db:"supervisor2_id" json:"supervisor2_id,omitempty"`
	Supervisor3ID *string   `db:"supervisor3_id" json:"supervisor3_id,omitempty"`
	Supervisor4ID *string   `db:"supervisor4_id" json:"supervisor4_id,omitempty"`
	MonitorID     string    `db:"monitor_id" json:"monitor_id"`
	Description   string    `db:"description" json:"description,omitempty"`
	// IsActive is derived: true iff at least one judge is assigned. It is
	// recomputed on every save and never accepted from callers.
	IsActive bool `db:"is_active" json:"is_active"`
	// Concluded records whether the defense has taken place.
	Concluded bool      `db:"concluded" json:"concluded"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	CreatedBy string    `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy string    `db:"updated_by" json:"updated_by,omitempty"`

	Judges []JudgeAssignment `db:"-" json:"judges"`
}

// JudgeAssignment binds a judge to a session. At most MaxJudges per session
// and a judge appears at most once within the same session.
type JudgeAssignment struct {
	ID        string    `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"session_id"`
	JudgeID   string    `db:"judge_id" json:"judge_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RoleOccupant pairs a role slot with the teacher occupying it.
type RoleOccupant struct {
	Role      SessionRole `json:"role"`
	TeacherID string      `json:"teacher_id"`
}

// RoleOccupants lists every occupied teacher slot of the session in a fixed
// order: supervisors 1-4, graduate monitor, then judges. The order keeps
// conflict messages deterministic.
func (s Session) RoleOccupants() []RoleOccupant {
	occupants := make([]RoleOccupant, 0, 5+len(s.Judges))
	if s.Supervisor1ID != "" {
		occupants = append(occupants, RoleOccupant{Role: RoleSupervisor1, TeacherID: s.Supervisor1ID})
	}
	for _, slot := range []struct {
		role SessionRole
		id   *string
	}{
		{RoleSupervisor2, s.Supervisor2ID},
		{RoleSupervisor3, s.Supervisor3ID},
		{RoleSupervisor4, s.Supervisor4ID},
	} {
		if slot.id != nil && *slot.id != "" {
			occupants = append(occupants, RoleOccupant{Role: slot.role, TeacherID: *slot.id})
		}
	}
	if s.MonitorID != "" {
		occupants = append(occupants, RoleOccupant{Role: RoleGraduateMonitor, TeacherID: s.MonitorID})
	}
	for _, judge := range s.Judges {
		if judge.JudgeID != "" {
			occupants = append(occupants, RoleOccupant{Role: RoleJudge, TeacherID: judge.JudgeID})
		}
	}
	return occupants
}

// JudgeIDs returns the assigned judge teacher ids in slice order.
func (s Session) JudgeIDs() []string {
	ids := make([]string, 0, len(s.Judges))
	for _, judge := range s.Judges {
		ids = append(ids, judge.JudgeID)
	}
	return ids
}

// SessionFilter captures filtering criteria for listing sessions.
type SessionFilter struct {
	TermID    string
	StudentID string
	TeacherID string
	Classroom string
	Date      *time.Time
	Concluded *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// AdmissionRejection is the structured outcome of a refused submission: the
// violated rule, a human-readable message and, when applicable, the
// conflicting session and person/role. It is a value, not a fault.
type AdmissionRejection struct {
	Rule                 string      `json:"rule"`
	Message              string      `json:"message"`
	ConflictingSessionID string      `json:"conflicting_session_id,omitempty"`
	ConflictingPersonID  string      `json:"conflicting_person_id,omitempty"`
	ConflictingRole      SessionRole `json:"conflicting_role,omitempty"`
}

// Error implements the error interface for admission rejections.
func (r *AdmissionRejection) Error() string {
	if r == nil {
		return "<nil>"
	}
	return r.Message
}
