package lab

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu       sync.RWMutex
	labs     map[string]Lab
	students map[string]Student
	now      func() time.Time
}

// NewInMemoryStore is used by tests and the offline demo.
func NewInMemoryStore() Store {
	return &memoryStore{
		labs:     map[string]Lab{},
		students: map[string]Student{},
		now:      time.Now,
	}
}

func (m *memoryStore) ListLabs(_ context.Context, opts LabListOpts) ([]Lab, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	major := strings.TrimSpace(opts.Major)
	out := make([]Lab, 0, len(m.labs))
	for _, l := range m.labs {
		if major != "" && l.Major != major {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Major != out[j].Major {
			return out[i].Major < out[j].Major
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *memoryStore) GetLab(_ context.Context, id string) (Lab, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.labs[id]
	if !ok {
		return Lab{}, fmt.Errorf("lab %q: %w", id, ErrNotFound)
	}
	return l, nil
}

func (m *memoryStore) PutLab(_ context.Context, l Lab) (Lab, error) {
	if err := ValidateCapacity(l.Capacity); err != nil {
		return Lab{}, err
	}
	if strings.TrimSpace(l.Name) == "" {
		return Lab{}, errors.New("lab name required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if prev, ok := m.labs[l.ID]; ok {
		l.CreatedAt = prev.CreatedAt
	} else {
		l.CreatedAt = m.now().Unix()
	}
	m.labs[l.ID] = l
	return l, nil
}

func (m *memoryStore) UpdateCapacity(_ context.Context, id string, capacity int) (Lab, error) {
	if err := ValidateCapacity(capacity); err != nil {
		return Lab{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.labs[id]
	if !ok {
		return Lab{}, fmt.Errorf("lab %q: %w", id, ErrNotFound)
	}
	l.Capacity = capacity
	m.labs[id] = l
	return l, nil
}

func (m *memoryStore) GetStudent(_ context.Context, id string) (Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.students[id]
	if !ok {
		return Student{}, fmt.Errorf("student %q: %w", id, ErrNotFound)
	}
	return st, nil
}

func (m *memoryStore) Register(_ context.Context, reg Registration) (Student, error) {
	if err := reg.Validate(); err != nil {
		return Student{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.labs[reg.LabID]; !ok {
		return Student{}, fmt.Errorf("lab %q: %w", reg.LabID, ErrUnknownLab)
	}
	now := m.now().Unix()
	st, ok := m.students[reg.StudentID]
	if !ok {
		st = Student{ID: reg.StudentID, CreatedAt: now, UpdatedAt: now}
	} else if st.LabID != reg.LabID || st.GPA != reg.GPA {
		st.UpdatedAt = now
	}
	st.Email = reg.Email
	st.GPA = reg.GPA
	st.LabID = reg.LabID
	m.students[reg.StudentID] = st
	return st, nil
}

func (m *memoryStore) Withdraw(_ context.Context, studentID string) (Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.students[studentID]
	if !ok {
		return Student{}, fmt.Errorf("student %q: %w", studentID, ErrNotFound)
	}
	st.LabID = ""
	st.UpdatedAt = m.now().Unix()
	m.students[studentID] = st
	return st, nil
}

func (m *memoryStore) ListApplicants(_ context.Context, labID string) ([]Applicant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Applicant{}
	for _, st := range m.students {
		if st.LabID == labID && labID != "" {
			out = append(out, applicantOf(st))
		}
	}
	sortApplicants(out)
	return out, nil
}

func (m *memoryStore) ListAllApplicants(_ context.Context) ([]Applicant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Applicant{}
	for _, st := range m.students {
		if st.LabID != "" {
			out = append(out, applicantOf(st))
		}
	}
	sortApplicants(out)
	return out, nil
}

func applicantOf(st Student) Applicant {
	return Applicant{StudentID: st.ID, Email: st.Email, GPA: st.GPA, LabID: st.LabID, RegisteredAt: st.UpdatedAt}
}

// same order as the SQL store: lab, registration time, student id
func sortApplicants(as []Applicant) {
	sort.Slice(as, func(i, j int) bool {
		if as[i].LabID != as[j].LabID {
			return as[i].LabID < as[j].LabID
		}
		if as[i].RegisteredAt != as[j].RegisteredAt {
			return as[i].RegisteredAt < as[j].RegisteredAt
		}
		return as[i].StudentID < as[j].StudentID
	})
}
