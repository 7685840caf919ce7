package lab

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnknownLab      = errors.New("unknown lab")
	ErrInvalidGPA      = errors.New("gpa must be between 0.00 and 4.30")
	ErrInvalidCapacity = errors.New("capacity must be at least 1")
)

const (
	MinGPA = 0.0
	MaxGPA = 4.30
)

type LabListOpts struct {
	Major string // empty: all majors
}

type Store interface {
	ListLabs(ctx context.Context, opts LabListOpts) ([]Lab, error) // ordered by major, name
	GetLab(ctx context.Context, id string) (Lab, error)
	PutLab(ctx context.Context, l Lab) (Lab, error)
	UpdateCapacity(ctx context.Context, id string, capacity int) (Lab, error)

	GetStudent(ctx context.Context, id string) (Student, error)
	// Register inserts or replaces the student's one registration.
	Register(ctx context.Context, reg Registration) (Student, error)
	Withdraw(ctx context.Context, studentID string) (Student, error)

	// ListApplicants returns a lab's applicants by registration time, then
	// student id. Ranking is applied by the caller.
	ListApplicants(ctx context.Context, labID string) ([]Applicant, error)
	ListAllApplicants(ctx context.Context) ([]Applicant, error)
}

func ValidateGPA(gpa float64) error {
	if math.IsNaN(gpa) || math.IsInf(gpa, 0) || gpa < MinGPA || gpa > MaxGPA {
		return fmt.Errorf("%w: got %v", ErrInvalidGPA, gpa)
	}
	return nil
}

func ValidateCapacity(capacity int) error {
	if capacity < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	return nil
}

func (r Registration) Validate() error {
	if r.StudentID == "" {
		return errors.New("student id required")
	}
	if r.LabID == "" {
		return errors.New("lab_id required")
	}
	return ValidateGPA(r.GPA)
}
