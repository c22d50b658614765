// Package engine implements admission control for thesis-defense sessions.
// Evaluate is a pure function over an eagerly loaded set of same-term
// sessions: no queries, no logging, no side effects. Callers load the
// working set once and reuse the verdict as a value.
package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/thesis-defense-api/internal/models"
)

// RuleID identifies the first admission rule a candidate session violated.
type RuleID string

const (
	RuleIncompleteFields       RuleID = "INCOMPLETE_FIELDS"
	RuleInvalidTimeRange       RuleID = "INVALID_TIME_RANGE"
	RuleClassroomOverlap       RuleID = "CLASSROOM_OVERLAP"
	RuleStudentConflict        RuleID = "STUDENT_CONFLICT"
	RuleDuplicateRoleInSession RuleID = "DUPLICATE_ROLE_IN_SESSION"
	RulePersonDoubleBooked     RuleID = "PERSON_DOUBLE_BOOKED"
	RuleMonitorIsSupervisor    RuleID = "MONITOR_IS_SUPERVISOR"
)

// Verdict is the outcome of evaluating one candidate session. The zero
// value is admissible; a rejected verdict names the violated rule and the
// conflicting session and person/role when applicable.
type Verdict struct {
	Rule                 RuleID
	Message              string
	ConflictingSessionID string
	ConflictingPersonID  string
	ConflictingRole      models.SessionRole
}

// Admissible reports whether the candidate passed every rule.
func (v Verdict) Admissible() bool {
	return v.Rule == ""
}

// Overlaps is the canonical half-open interval test shared by every rule
// that compares time ranges. Times are zero-padded "HH:MM" strings, so
// lexical order equals temporal order. Ranges that merely touch at a
// boundary ([10:00,11:00) and [11:00,12:00)) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && bStart < aEnd
}

// SameDay compares two dates by calendar day, ignoring time-of-day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Evaluate decides whether the candidate may be admitted against the given
// set of already persisted sessions in the same term. Rules run in a fixed
// order and the first violation wins, so rejection messages are
// reproducible. excludeID names the session being edited, if any; it is
// skipped in every scan so a session never conflicts with itself.
func Evaluate(candidate models.Session, existing []models.Session, excludeID string) Verdict {
	if v := checkCompleteness(candidate); !v.Admissible() {
		return v
	}
	if candidate.StartTime >= candidate.EndTime {
		return Verdict{
			Rule:    RuleInvalidTimeRange,
			Message: fmt.Sprintf("start time %s must be before end time %s", candidate.StartTime, candidate.EndTime),
		}
	}

	others := relevant(candidate, existing, excludeID)

	for _, other := range others {
		if other.Classroom == candidate.Classroom {
			return Verdict{
				Rule:                 RuleClassroomOverlap,
				Message:              fmt.Sprintf("classroom %s is already booked from %s to %s", other.Classroom, other.StartTime, other.EndTime),
				ConflictingSessionID: other.ID,
			}
		}
	}

	for _, other := range others {
		if other.StudentID == candidate.StudentID {
			return Verdict{
				Rule:                 RuleStudentConflict,
				Message:              "the student already defends in an overlapping session",
				ConflictingSessionID: other.ID,
				ConflictingPersonID:  other.StudentID,
			}
		}
	}

	if v := checkDuplicateRoles(candidate); !v.Admissible() {
		return v
	}

	occupants := candidate.RoleOccupants()
	for _, other := range others {
		for _, mine := range occupants {
			for _, theirs := range other.RoleOccupants() {
				if mine.TeacherID == theirs.TeacherID {
					return Verdict{
						Rule:                 RulePersonDoubleBooked,
						Message:              fmt.Sprintf("person already serves as %s in an overlapping session", theirs.Role),
						ConflictingSessionID: other.ID,
						ConflictingPersonID:  theirs.TeacherID,
						ConflictingRole:      theirs.Role,
					}
				}
			}
		}
	}

	if role, ok := supervisorSlotOf(candidate, candidate.MonitorID); ok {
		return Verdict{
			Rule:                RuleMonitorIsSupervisor,
			Message:             fmt.Sprintf("the graduate monitor also occupies %s in this session", role),
			ConflictingPersonID: candidate.MonitorID,
			ConflictingRole:     role,
		}
	}

	return Verdict{}
}

// relevant narrows the working set to sessions that can collide with the
// candidate at all: same term, same date, overlapping time range, and not
// the session being edited.
func relevant(candidate models.Session, existing []models.Session, excludeID string) []models.Session {
	var out []models.Session
	for _, other := range existing {
		if excludeID != "" && other.ID == excludeID {
			continue
		}
		if other.TermID != candidate.TermID {
			continue
		}
		if !SameDay(other.Date, candidate.Date) {
			continue
		}
		if !Overlaps(candidate.StartTime, candidate.EndTime, other.StartTime, other.EndTime) {
			continue
		}
		out = append(out, other)
	}
	return out
}

func checkCompleteness(candidate models.Session) Verdict {
	var missing []string
	if candidate.TermID == "" {
		missing = append(missing, "term")
	}
	if candidate.Date.IsZero() {
		missing = append(missing, "date")
	}
	if candidate.StartTime == "" {
		missing = append(missing, "start_time")
	}
	if candidate.EndTime == "" {
		missing = append(missing, "end_time")
	}
	if candidate.Classroom == "" {
		missing = append(missing, "classroom")
	}
	if candidate.StudentID == "" {
		missing = append(missing, "student")
	}
	if candidate.Supervisor1ID == "" {
		missing = append(missing, "supervisor1")
	}
	if candidate.MonitorID == "" {
		missing = append(missing, "graduate_monitor")
	}
	if len(missing) == 0 {
		return Verdict{}
	}
	return Verdict{
		Rule:    RuleIncompleteFields,
		Message: "mandatory fields missing: " + strings.Join(missing, ", "),
	}
}

// checkDuplicateRoles rejects a person occupying two slots within the same
// session. The monitor/supervisor pairing is deliberately left to the
// dedicated MonitorIsSupervisor rule; every other pairing (duplicate
// judges, supervisor twice, judge who also supervises or monitors) is a
// duplicate-role violation.
func checkDuplicateRoles(candidate models.Session) Verdict {
	occupants := candidate.RoleOccupants()
	for i := 0; i < len(occupants); i++ {
		for j := i + 1; j < len(occupants); j++ {
			if occupants[i].TeacherID != occupants[j].TeacherID {
				continue
			}
			if monitorSupervisorPair(occupants[i].Role, occupants[j].Role) {
				continue
			}
			return Verdict{
				Rule:                RuleDuplicateRoleInSession,
				Message:             fmt.Sprintf("person occupies both %s and %s in this session", occupants[i].Role, occupants[j].Role),
				ConflictingPersonID: occupants[j].TeacherID,
				ConflictingRole:     occupants[j].Role,
			}
		}
	}
	return Verdict{}
}

func monitorSupervisorPair(a, b models.SessionRole) bool {
	return (a == models.RoleGraduateMonitor && isSupervisor(b)) ||
		(b == models.RoleGraduateMonitor && isSupervisor(a))
}

func isSupervisor(role models.SessionRole) bool {
	switch role {
	case models.RoleSupervisor1, models.RoleSupervisor2, models.RoleSupervisor3, models.RoleSupervisor4:
		return true
	}
	return false
}

func supervisorSlotOf(candidate models.Session, teacherID string) (models.SessionRole, bool) {
	if teacherID == "" {
		return "", false
	}
	if candidate.Supervisor1ID == teacherID {
		return models.RoleSupervisor1, true
	}
	for _, slot := range []struct {
		role models.SessionRole
		id   *string
	}{
		{models.RoleSupervisor2, candidate.Supervisor2ID},
		{models.RoleSupervisor3, candidate.Supervisor3ID},
		{models.RoleSupervisor4, candidate.Supervisor4ID},
	} {
		if slot.id != nil && *slot.id == teacherID {
			return slot.role, true
		}
	}
	return "", false
}
