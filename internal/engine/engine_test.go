package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/thesis-defense-api/internal/models"
)

var defenseDay = time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC)

func session(id, classroom, start, end string) models.Session {
	return models.Session{
		ID:            id,
		TermID:        "term-1",
		Date:          defenseDay,
		StartTime:     start,
		EndTime:       end,
		Classroom:     classroom,
		StudentID:     "stu-" + id,
		Supervisor1ID: "sup-" + id,
		MonitorID:     "mon-" + id,
	}
}

func strPtr(s string) *string { return &s }

func TestEvaluateAdmissibleDraft(t *testing.T) {
	candidate := session("", "1", "10:00", "11:00")
	verdict := Evaluate(candidate, nil, "")
	assert.True(t, verdict.Admissible())
	assert.Empty(t, verdict.Rule)
}

func TestEvaluateIncompleteFields(t *testing.T) {
	candidate := session("", "1", "10:00", "11:00")
	candidate.Supervisor1ID = ""
	candidate.MonitorID = ""

	verdict := Evaluate(candidate, nil, "")
	require.False(t, verdict.Admissible())
	assert.Equal(t, RuleIncompleteFields, verdict.Rule)
	assert.Contains(t, verdict.Message, "supervisor1")
	assert.Contains(t, verdict.Message, "graduate_monitor")
}

func TestEvaluateInvalidTimeRange(t *testing.T) {
	for _, tc := range []struct{ start, end string }{
		{"11:00", "10:00"},
		{"10:00", "10:00"},
	} {
		verdict := Evaluate(session("", "1", tc.start, tc.end), nil, "")
		require.False(t, verdict.Admissible())
		assert.Equal(t, RuleInvalidTimeRange, verdict.Rule)
	}
}

func TestEvaluateClassroomOverlap(t *testing.T) {
	existing := session("a", "3", "10:00", "11:00")
	candidate := session("", "3", "10:30", "11:30")

	verdict := Evaluate(candidate, []models.Session{existing}, "")
	require.False(t, verdict.Admissible())
	assert.Equal(t, RuleClassroomOverlap, verdict.Rule)
	assert.Equal(t, "a", verdict.ConflictingSessionID)
}

func TestEvaluateTouchingRangesDoNotConflict(t *testing.T) {
	existing := session("a", "3", "10:00", "11:00")
	candidate := session("", "3", "11:00", "12:00")

	verdict := Evaluate(candidate, []models.Session{existing}, "")
	assert.True(t, verdict.Admissible())
}

func TestEvaluateOneMinutePastBoundaryConflicts(t *testing.T) {
	existing := session("a", "3", "11:00", "12:00")
	candidate := session("", "3", "10:00", "11:01")

	verdict := Evaluate(candidate, []models.Session{existing}, "")
	require.False(t, verdict.Admissible())
	assert.Equal(t, RuleClassroomOverlap, verdict.Rule)
}

func TestEvaluateDifferentDateOrTermDoesNotConflict(t *testing.T) {
	otherDay := session("a", "3", "10:00", "11:00")
	otherDay.Date = defenseDay.AddDate(0, 0, 1)

	otherTerm := session("b", "3", "10:00", "11:00")
	otherTerm.TermID = "term-2"

	candidate := session("", "3", "10:00", "11:00")
	verdict := Evaluate(candidate, []models.Session{otherDay, otherTerm}, "")
	assert.True(t, verdict.Admissible())
}

func TestEvaluateStudentConflictAcrossClassrooms(t *testing.T) {
	existing := session("a", "3", "10:00", "11:00")
	candidate := session("", "5", "10:30", "11:30")
	candidate.StudentID = existing.StudentID

	verdict := Evaluate(candidate, []models.Session{existing}, "")
	require.False(t, verdict.Admissible())
	assert.Equal(t, RuleStudentConflict, verdict.Rule)
	assert.Equal(t, "a", verdict.ConflictingSessionID)
	assert.Equal(t, existing.StudentID, verdict.ConflictingPersonID)
}

func TestEvaluateClassroomOverlapWinsOverStudentConflict(t *testing.T) {
	existing := session("a", "3", "10:00", "11:00")
	candidate := session("", "3", "10:30", "11:30")
	candidate.StudentID = existing.StudentID

	verdict := Evaluate(candidate, []models.Session{existing}, "")
	assert.Equal(t, RuleClassroomOverlap, verdict.Rule)
}

func TestEvaluateDuplicateJudges(t *testing.T) {
	candidate := session("", "1", "10:00", "11:00")
	candidate.Judges = []models.JudgeAssignment{
		{JudgeID: "t3"},
		{JudgeID: "t3"},
	}

	verdict := Evaluate(candidate, nil, "")
	require.False(t, verdict.Admissible())
	assert.Equal(t, RuleDuplicateRoleInSession, verdict.Rule)
	assert.Equal(t, "t3", verdict.ConflictingPersonID)
	assert.Equal(t, models.RoleJudge, verdict.ConflictingRole)
}

func TestEvaluateJudgeWhoAlsoSupervises(t *testing.T) {
	candidate := session("", "1", "10:00", "11:00")
	candidate.Supervisor2ID = strPtr("t9")
	candidate.Judges = []models.JudgeAssignment{{JudgeID: "t9"}}

	verdict := Evaluate(candidate, nil, "")
	require.False(t, verdict.Admissible())
	assert.Equal(t, RuleDuplicateRoleInSession, verdict.Rule)
}

func TestEvaluateMonitorWhoAlsoJudges(t *testing.T) {
	candidate := session("", "1", "10:00", "11:00")
	candidate.Judges = []models.JudgeAssignment{{JudgeID: candidate.MonitorID}}

	verdict := Evaluate(candidate, nil, "")
	require.False(t, verdict.Admissible())
	assert.Equal(t, RuleDuplicateRoleInSession, verdict.Rule)
}

func TestEvaluateMonitorIsSupervisor(t *testing.T) {
	candidate := session("", "1", "10:00", "11:00")
	candidate.MonitorID = candidate.Supervisor1ID

	verdict := Evaluate(candidate, nil, "")
	require.False(t, verdict.Admissible())
	assert.Equal(t, RuleMonitorIsSupervisor, verdict.Rule)
	assert.Equal(t, candidate.MonitorID, verdict.ConflictingPersonID)
	assert.Equal(t, models.RoleSupervisor1, verdict.ConflictingRole)
}

func TestEvaluateMonitorIsConsultantSupervisor(t *testing.T) {
	candidate := session("", "1", "10:00", "11:00")
	candidate.Supervisor3ID = strPtr(candidate.MonitorID)

	verdict := Evaluate(candidate, nil, "")
	require.False(t, verdict.Admissible())
	assert.Equal(t, RuleMonitorIsSupervisor, verdict.Rule)
	assert.Equal(t, models.RoleSupervisor3, verdict.ConflictingRole)
}

func TestEvaluatePersonDoubleBooked(t *testing.T) {
	// Session A's graduate monitor shows up as supervisor1 of the candidate
	// in another classroom at an overlapping time.
	existing := session("a", "3", "10:00", "11:00")
	existing.MonitorID = "t2"

	candidate := session("", "5", "10:30", "11:30")
	candidate.Supervisor1ID = "t2"

	verdict := Evaluate(candidate, []models.Session{existing}, "")
	require.False(t, verdict.Admissible())
	assert.Equal(t, RulePersonDoubleBooked, verdict.Rule)
	assert.Equal(t, "a", verdict.ConflictingSessionID)
	assert.Equal(t, "t2", verdict.ConflictingPersonID)
	assert.Equal(t, models.RoleGraduateMonitor, verdict.ConflictingRole)
}

func TestEvaluateJudgeDoubleBookedAcrossSessions(t *testing.T) {
	existing := session("a", "3", "10:00", "11:00")
	existing.Judges = []models.JudgeAssignment{{JudgeID: "t7"}}

	candidate := session("", "5", "10:00", "11:00")
	candidate.Judges = []models.JudgeAssignment{{JudgeID: "t7"}}

	verdict := Evaluate(candidate, []models.Session{existing}, "")
	require.False(t, verdict.Admissible())
	assert.Equal(t, RulePersonDoubleBooked, verdict.Rule)
	assert.Equal(t, models.RoleJudge, verdict.ConflictingRole)
}

func TestEvaluateNoSelfConflict(t *testing.T) {
	stored := session("a", "3", "10:00", "11:00")
	stored.Judges = []models.JudgeAssignment{{JudgeID: "t7"}}

	verdict := Evaluate(stored, []models.Session{stored}, stored.ID)
	assert.True(t, verdict.Admissible())
}

func TestEvaluateEditKeepsConflictsWithOthers(t *testing.T) {
	mine := session("a", "3", "10:00", "11:00")
	other := session("b", "3", "10:30", "11:30")

	// Rescheduling "a" into a slot that now collides with "b".
	edited := mine
	edited.StartTime = "10:45"
	edited.EndTime = "11:45"

	verdict := Evaluate(edited, []models.Session{mine, other}, mine.ID)
	require.False(t, verdict.Admissible())
	assert.Equal(t, RuleClassroomOverlap, verdict.Rule)
	assert.Equal(t, "b", verdict.ConflictingSessionID)
}

func TestOverlapsSymmetry(t *testing.T) {
	ranges := [][2]string{
		{"08:00", "09:00"},
		{"08:30", "09:30"},
		{"09:00", "10:00"},
		{"07:00", "12:00"},
		{"09:59", "10:00"},
	}
	for _, a := range ranges {
		for _, b := range ranges {
			assert.Equal(t,
				Overlaps(a[0], a[1], b[0], b[1]),
				Overlaps(b[0], b[1], a[0], a[1]),
				"overlap(%v,%v) must be symmetric", a, b)
		}
	}
}

func TestOverlapsBoundaries(t *testing.T) {
	assert.False(t, Overlaps("10:00", "11:00", "11:00", "12:00"))
	assert.True(t, Overlaps("10:00", "11:01", "11:00", "12:00"))
	assert.True(t, Overlaps("10:00", "11:00", "10:00", "11:00"))
	assert.False(t, Overlaps("10:00", "11:00", "12:00", "13:00"))
}
