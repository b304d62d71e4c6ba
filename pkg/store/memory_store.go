package store

import (
	"sort"
	"sync"

	"greenlaunch/pkg/domain"
)

// MemoryStore keeps everything in-process. Used by tests and local runs
// without Postgres. The single mutex makes every Update* atomic.
type MemoryStore struct {
	mu           sync.RWMutex
	profiles     map[string]domain.Profile
	profileOrder []string
	projects     map[string]domain.Project
	projectOrder []string
	courses      map[string]domain.Course
	courseOrder  []string
	enrollments  map[string]domain.Enrollment
	sessions     map[string]domain.Session
	sessionOrder []string
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles:    make(map[string]domain.Profile),
		projects:    make(map[string]domain.Project),
		courses:     make(map[string]domain.Course),
		enrollments: make(map[string]domain.Enrollment),
		sessions:    make(map[string]domain.Session),
	}
}

func (m *MemoryStore) SaveProfile(p domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.profiles[p.UID]; !exists {
		m.profileOrder = append(m.profileOrder, p.UID)
	}
	m.profiles[p.UID] = p
	return nil
}

func (m *MemoryStore) GetProfile(uid string) (domain.Profile, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[uid]
	return p, ok, nil
}

func (m *MemoryStore) ListProfiles() ([]domain.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Profile, 0, len(m.profileOrder))
	for _, uid := range m.profileOrder {
		if p, ok := m.profiles[uid]; ok {
			res = append(res, p)
		}
	}
	return res, nil
}

func (m *MemoryStore) CreateProject(p domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.projects[p.ID]; !exists {
		m.projectOrder = append(m.projectOrder, p.ID)
	}
	m.projects[p.ID] = p
	return nil
}

func (m *MemoryStore) GetProject(id string) (domain.Project, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	return p, ok, nil
}

func (m *MemoryStore) ListProjects() ([]domain.Project, error) {
	return m.filterProjects(func(domain.Project) bool { return true })
}

func (m *MemoryStore) ListProjectsByOwner(uid string) ([]domain.Project, error) {
	return m.filterProjects(func(p domain.Project) bool { return p.EntrepreneurID == uid })
}

func (m *MemoryStore) ListProjectsByStatus(status domain.ProjectStatus) ([]domain.Project, error) {
	return m.filterProjects(func(p domain.Project) bool { return p.Status == status })
}

func (m *MemoryStore) filterProjects(keep func(domain.Project) bool) ([]domain.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Project, 0, len(m.projectOrder))
	for _, id := range m.projectOrder {
		if p, ok := m.projects[id]; ok && keep(p) {
			res = append(res, p)
		}
	}
	return res, nil
}

func (m *MemoryStore) UpdateProject(id string, mutate func(*domain.Project) error) (domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	project, ok := m.projects[id]
	if !ok {
		return domain.Project{}, ErrNotFound
	}
	if err := mutate(&project); err != nil {
		return domain.Project{}, err
	}
	m.projects[id] = project
	return project, nil
}

func (m *MemoryStore) SaveCourse(c domain.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.courses[c.ID]; !exists {
		m.courseOrder = append(m.courseOrder, c.ID)
	}
	m.courses[c.ID] = c
	return nil
}

func (m *MemoryStore) GetCourse(id string) (domain.Course, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.courses[id]
	return c, ok, nil
}

func (m *MemoryStore) ListCourses(track, level string) ([]domain.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Course, 0, len(m.courseOrder))
	for _, id := range m.courseOrder {
		c, ok := m.courses[id]
		if !ok {
			continue
		}
		if track != "" && c.Track != track {
			continue
		}
		if level != "" && c.Level != level {
			continue
		}
		res = append(res, c)
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (m *MemoryStore) ListCoursesByCreator(uid string) ([]domain.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Course, 0)
	for _, id := range m.courseOrder {
		if c, ok := m.courses[id]; ok && c.CreatedBy == uid {
			res = append(res, c)
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (m *MemoryStore) GetEnrollment(id string) (domain.Enrollment, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.enrollments[id]
	return e, ok, nil
}

func (m *MemoryStore) UpsertEnrollment(id string, mutate func(*domain.Enrollment) error) (domain.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	enrollment, ok := m.enrollments[id]
	if !ok {
		enrollment = domain.Enrollment{ID: id}
	}
	if err := mutate(&enrollment); err != nil {
		return domain.Enrollment{}, err
	}
	m.enrollments[id] = enrollment
	return enrollment, nil
}

func (m *MemoryStore) ListEnrollmentsByUser(uid string) ([]domain.Enrollment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Enrollment, 0)
	for _, e := range m.enrollments {
		if e.UserID == uid {
			res = append(res, e)
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].EnrolledAt.Before(res[j].EnrolledAt) })
	return res, nil
}

func (m *MemoryStore) CreateSession(s domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[s.ID]; !exists {
		m.sessionOrder = append(m.sessionOrder, s.ID)
	}
	m.sessions[s.ID] = s
	return nil
}

func (m *MemoryStore) GetSession(id string) (domain.Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok, nil
}

func (m *MemoryStore) ListSessions() ([]domain.Session, error) {
	return m.filterSessions(func(domain.Session) bool { return true })
}

func (m *MemoryStore) ListSessionsByEntrepreneur(uid string) ([]domain.Session, error) {
	return m.filterSessions(func(s domain.Session) bool { return s.EntrepreneurID == uid })
}

func (m *MemoryStore) ListSessionsByMentor(uid string) ([]domain.Session, error) {
	return m.filterSessions(func(s domain.Session) bool { return s.MentorID == uid })
}

func (m *MemoryStore) filterSessions(keep func(domain.Session) bool) ([]domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Session, 0, len(m.sessionOrder))
	for _, id := range m.sessionOrder {
		if s, ok := m.sessions[id]; ok && keep(s) {
			res = append(res, s)
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].StartAt.Before(res[j].StartAt) })
	return res, nil
}

func (m *MemoryStore) UpdateSession(id string, mutate func(*domain.Session) error) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return domain.Session{}, ErrNotFound
	}
	if err := mutate(&session); err != nil {
		return domain.Session{}, err
	}
	m.sessions[id] = session
	return session, nil
}

func (m *MemoryStore) Counts() (Totals, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Totals{
		Users:    len(m.profiles),
		Courses:  len(m.courses),
		Projects: len(m.projects),
		Sessions: len(m.sessions),
	}, nil
}
