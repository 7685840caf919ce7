package lab

type Lab struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Professor string `json:"professor,omitempty"`
	Major     string `json:"major"`
	Capacity  int    `json:"capacity"`

	CreatedAt int64 `json:"created_at,omitempty"`
}

// Student holds a student's single registration. LabID is empty after a
// withdrawal.
type Student struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	GPA   float64 `json:"gpa"`
	LabID string  `json:"lab_id,omitempty"`

	CreatedAt int64 `json:"created_at,omitempty"`
	UpdatedAt int64 `json:"updated_at,omitempty"` // last registration change
}

// Applicant is a student as seen from the lab they chose.
type Applicant struct {
	StudentID    string  `json:"student_id"`
	Email        string  `json:"email"`
	GPA          float64 `json:"gpa"`
	LabID        string  `json:"lab_id"`
	RegisteredAt int64   `json:"registered_at"`
}

type Registration struct {
	StudentID string  `json:"-"`
	Email     string  `json:"-"`
	GPA       float64 `json:"gpa"`
	LabID     string  `json:"lab_id"`
}
