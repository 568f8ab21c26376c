package dto

// XPGrantRequest grants XP to a single student.
type XPGrantRequest struct {
	Amount          int    `json:"amount" validate:"required,gt=0"`
	Reason          string `json:"reason"`
	ReferenceEntity string `json:"reference_entity"`
	ReferenceID     *uint  `json:"reference_id"`
}

// XPPenaltyRequest deducts XP from a single student. XP floors at zero.
type XPPenaltyRequest struct {
	Amount          int    `json:"amount" validate:"required,gt=0"`
	Reason          string `json:"reason"`
	ReferenceEntity string `json:"reference_entity"`
	ReferenceID     *uint  `json:"reference_id"`
}

// BadgeAwardRequest grants a named badge outside the tier progression.
type BadgeAwardRequest struct {
	BadgeName string `json:"badge_name" validate:"required,min=1"`
	Reason    string `json:"reason"`
}

// AcademicPointsRequest credits a quest's academic points to a student.
// The value always comes from the quest definition, never from the caller.
type AcademicPointsRequest struct {
	QuestCode string `json:"quest_code" validate:"required"`
	Reason    string `json:"reason"`
}

// GuildPenaltyRequest deducts XP from every member of a guild.
type GuildPenaltyRequest struct {
	Amount int    `json:"amount" validate:"required,gt=0"`
	Reason string `json:"reason"`
}

// StudentOutcome reports the per-student result of a fan-out operation.
// Fan-outs are not atomic across students: earlier successes stand even if
// a later student fails.
type StudentOutcome struct {
	StudentID uint             `json:"student_id"`
	Error     string           `json:"error,omitempty"`
	Student   *StudentResponse `json:"student,omitempty"`
}

// BulkEnrollResponse reports created and pre-existing enrollments.
type BulkEnrollResponse struct {
	Created  []EnrollmentResponse `json:"created"`
	Existing []uint               `json:"already_enrolled_student_ids"`
}

// BulkCompleteResponse reports the per-student outcomes of a guild-wide
// quest completion.
type BulkCompleteResponse struct {
	Outcomes []StudentOutcome `json:"outcomes"`
}
