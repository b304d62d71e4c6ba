package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"greenlaunch/pkg/domain"
)

const migrateLockID int64 = 52815281

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations under an advisory lock
// so concurrent instances don't race the schema.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(&ProfileModel{}, &ProjectModel{}, &CourseModel{}, &EnrollmentModel{}, &SessionModel{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// SaveProfile registers or updates a profile.
func (s *GormStore) SaveProfile(p domain.Profile) error {
	model := profileToModel(p)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uid"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "name", "role", "updated_at"}),
	}).Create(&model).Error
}

// GetProfile returns a profile by uid.
func (s *GormStore) GetProfile(uid string) (domain.Profile, bool, error) {
	var model ProfileModel
	if err := s.db.First(&model, "uid = ?", uid).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Profile{}, false, nil
		}
		return domain.Profile{}, false, err
	}
	return profileFromModel(model), true, nil
}

// ListProfiles returns all profiles ordered by created_at.
func (s *GormStore) ListProfiles() ([]domain.Profile, error) {
	var models []ProfileModel
	if err := s.db.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Profile, 0, len(models))
	for _, m := range models {
		res = append(res, profileFromModel(m))
	}
	return res, nil
}

// CreateProject stores a new project.
func (s *GormStore) CreateProject(p domain.Project) error {
	model := projectToModel(p)
	return s.db.Create(&model).Error
}

// GetProject retrieves a project.
func (s *GormStore) GetProject(id string) (domain.Project, bool, error) {
	var model ProjectModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Project{}, false, nil
		}
		return domain.Project{}, false, err
	}
	return projectFromModel(model), true, nil
}

// ListProjects returns all projects ordered by created_at.
func (s *GormStore) ListProjects() ([]domain.Project, error) {
	return s.listProjects(nil)
}

// ListProjectsByOwner returns the entrepreneur's own projects.
func (s *GormStore) ListProjectsByOwner(uid string) ([]domain.Project, error) {
	return s.listProjects(func(tx *gorm.DB) *gorm.DB {
		return tx.Where("entrepreneur_id = ?", uid)
	})
}

// ListProjectsByStatus filters projects by workflow status.
func (s *GormStore) ListProjectsByStatus(status domain.ProjectStatus) ([]domain.Project, error) {
	return s.listProjects(func(tx *gorm.DB) *gorm.DB {
		return tx.Where("status = ?", string(status))
	})
}

func (s *GormStore) listProjects(scope func(*gorm.DB) *gorm.DB) ([]domain.Project, error) {
	tx := s.db.Order("created_at ASC")
	if scope != nil {
		tx = scope(tx)
	}
	var models []ProjectModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Project, 0, len(models))
	for _, m := range models {
		res = append(res, projectFromModel(m))
	}
	return res, nil
}

// UpdateProject applies mutate to the current row under a FOR UPDATE lock so
// concurrent appends to the jsonb lists are never lost.
func (s *GormStore) UpdateProject(id string, mutate func(*domain.Project) error) (domain.Project, error) {
	var out domain.Project
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var model ProjectModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrNotFound
			}
			return err
		}
		project := projectFromModel(model)
		if err := mutate(&project); err != nil {
			return err
		}
		updated := projectToModel(project)
		if err := tx.Model(&ProjectModel{}).Where("id = ?", id).Select("*").Omit("id", "created_at").Updates(&updated).Error; err != nil {
			return err
		}
		out = project
		return nil
	})
	return out, err
}

// SaveCourse stores or updates a course.
func (s *GormStore) SaveCourse(c domain.Course) error {
	model := courseToModel(c)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "description", "track", "level", "learning_path", "modules", "updated_at"}),
	}).Create(&model).Error
}

// GetCourse retrieves a course.
func (s *GormStore) GetCourse(id string) (domain.Course, bool, error) {
	var model CourseModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Course{}, false, nil
		}
		return domain.Course{}, false, err
	}
	return courseFromModel(model), true, nil
}

// ListCourses returns the catalog newest first, optionally filtered.
func (s *GormStore) ListCourses(track, level string) ([]domain.Course, error) {
	tx := s.db.Order("created_at DESC")
	if track != "" {
		tx = tx.Where("track = ?", track)
	}
	if level != "" {
		tx = tx.Where("level = ?", level)
	}
	var models []CourseModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Course, 0, len(models))
	for _, m := range models {
		res = append(res, courseFromModel(m))
	}
	return res, nil
}

// ListCoursesByCreator returns the mentor's own courses newest first.
func (s *GormStore) ListCoursesByCreator(uid string) ([]domain.Course, error) {
	var models []CourseModel
	if err := s.db.Where("created_by = ?", uid).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Course, 0, len(models))
	for _, m := range models {
		res = append(res, courseFromModel(m))
	}
	return res, nil
}

// GetEnrollment returns an enrollment by composite id.
func (s *GormStore) GetEnrollment(id string) (domain.Enrollment, bool, error) {
	var model EnrollmentModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Enrollment{}, false, nil
		}
		return domain.Enrollment{}, false, err
	}
	return enrollmentFromModel(model), true, nil
}

// UpsertEnrollment mutates an existing enrollment, or a zero-valued one when
// none exists yet, under a row lock. The composite id makes this idempotent.
func (s *GormStore) UpsertEnrollment(id string, mutate func(*domain.Enrollment) error) (domain.Enrollment, error) {
	var out domain.Enrollment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var model EnrollmentModel
		found := true
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, "id = ?", id).Error; err != nil {
			if err != gorm.ErrRecordNotFound {
				return err
			}
			found = false
		}
		var enrollment domain.Enrollment
		if found {
			enrollment = enrollmentFromModel(model)
		} else {
			enrollment = domain.Enrollment{ID: id}
		}
		if err := mutate(&enrollment); err != nil {
			return err
		}
		updated := enrollmentToModel(enrollment)
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"modules_completed", "progress", "quiz_scores", "updated_at"}),
		}).Create(&updated).Error; err != nil {
			return err
		}
		out = enrollment
		return nil
	})
	return out, err
}

// ListEnrollmentsByUser returns the user's enrollments.
func (s *GormStore) ListEnrollmentsByUser(uid string) ([]domain.Enrollment, error) {
	var models []EnrollmentModel
	if err := s.db.Where("user_id = ?", uid).Order("enrolled_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Enrollment, 0, len(models))
	for _, m := range models {
		res = append(res, enrollmentFromModel(m))
	}
	return res, nil
}

// CreateSession stores a new session.
func (s *GormStore) CreateSession(sess domain.Session) error {
	model := sessionToModel(sess)
	return s.db.Create(&model).Error
}

// GetSession retrieves a session.
func (s *GormStore) GetSession(id string) (domain.Session, bool, error) {
	var model SessionModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Session{}, false, nil
		}
		return domain.Session{}, false, err
	}
	return sessionFromModel(model), true, nil
}

// ListSessions returns all sessions ordered by start time.
func (s *GormStore) ListSessions() ([]domain.Session, error) {
	return s.listSessions("")
}

// ListSessionsByEntrepreneur filters sessions by entrepreneur participant.
func (s *GormStore) ListSessionsByEntrepreneur(uid string) ([]domain.Session, error) {
	return s.listSessions("entrepreneur_id = ?", uid)
}

// ListSessionsByMentor filters sessions by mentor participant.
func (s *GormStore) ListSessionsByMentor(uid string) ([]domain.Session, error) {
	return s.listSessions("mentor_id = ?", uid)
}

func (s *GormStore) listSessions(cond string, args ...any) ([]domain.Session, error) {
	tx := s.db.Order("start_at ASC")
	if cond != "" {
		tx = tx.Where(cond, args...)
	}
	var models []SessionModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Session, 0, len(models))
	for _, m := range models {
		res = append(res, sessionFromModel(m))
	}
	return res, nil
}

// UpdateSession applies mutate under a FOR UPDATE lock.
func (s *GormStore) UpdateSession(id string, mutate func(*domain.Session) error) (domain.Session, error) {
	var out domain.Session
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var model SessionModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrNotFound
			}
			return err
		}
		session := sessionFromModel(model)
		if err := mutate(&session); err != nil {
			return err
		}
		updated := sessionToModel(session)
		if err := tx.Model(&SessionModel{}).Where("id = ?", id).Select("*").Omit("id", "created_at").Updates(&updated).Error; err != nil {
			return err
		}
		out = session
		return nil
	})
	return out, err
}

// Counts returns entity totals for the admin overview.
func (s *GormStore) Counts() (Totals, error) {
	var totals Totals
	counts := []struct {
		model any
		dst   *int
	}{
		{&ProfileModel{}, &totals.Users},
		{&CourseModel{}, &totals.Courses},
		{&ProjectModel{}, &totals.Projects},
		{&SessionModel{}, &totals.Sessions},
	}
	for _, c := range counts {
		var n int64
		if err := s.db.Model(c.model).Count(&n).Error; err != nil {
			return Totals{}, err
		}
		*c.dst = int(n)
	}
	return totals, nil
}

func toJSON(v any) datatypes.JSON {
	raw, _ := json.Marshal(v)
	return raw
}

func fromJSON[T any](raw datatypes.JSON) T {
	var v T
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &v)
	}
	return v
}

func profileToModel(p domain.Profile) ProfileModel {
	return ProfileModel{
		UID:       p.UID,
		Email:     p.Email,
		Name:      p.Name,
		Role:      string(p.Role),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func profileFromModel(m ProfileModel) domain.Profile {
	return domain.Profile{
		UID:       m.UID,
		Email:     m.Email,
		Name:      m.Name,
		Role:      domain.Role(m.Role),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func projectToModel(p domain.Project) ProjectModel {
	return ProjectModel{
		ID:              p.ID,
		Title:           p.Title,
		Type:            string(p.Type),
		Stage:           string(p.Stage),
		Status:          string(p.Status),
		EntrepreneurID:  p.EntrepreneurID,
		MentorID:        p.MentorID,
		Forms:           toJSON(p.Forms),
		Documents:       toJSON(p.Documents),
		Feedback:        toJSON(p.Feedback),
		Recommendations: toJSON(p.Recommendations),
		Iterations:      toJSON(p.Iterations),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func projectFromModel(m ProjectModel) domain.Project {
	project := domain.Project{
		ID:              m.ID,
		Title:           m.Title,
		Type:            domain.ProjectType(m.Type),
		Stage:           domain.ProjectStage(m.Stage),
		Status:          domain.ProjectStatus(m.Status),
		EntrepreneurID:  m.EntrepreneurID,
		MentorID:        m.MentorID,
		Forms:           fromJSON[domain.Forms](m.Forms),
		Documents:       fromJSON[[]domain.Document](m.Documents),
		Feedback:        fromJSON[[]domain.Feedback](m.Feedback),
		Recommendations: fromJSON[[]domain.Recommendation](m.Recommendations),
		Iterations:      fromJSON[[]domain.Iteration](m.Iterations),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if project.Forms == nil {
		project.Forms = domain.Forms{}
	}
	return project
}

func courseToModel(c domain.Course) CourseModel {
	return CourseModel{
		ID:           c.ID,
		Title:        c.Title,
		Description:  c.Description,
		Track:        c.Track,
		Level:        c.Level,
		LearningPath: c.LearningPath,
		Modules:      toJSON(c.Modules),
		CreatedBy:    c.CreatedBy,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func courseFromModel(m CourseModel) domain.Course {
	return domain.Course{
		ID:           m.ID,
		Title:        m.Title,
		Description:  m.Description,
		Track:        m.Track,
		Level:        m.Level,
		LearningPath: m.LearningPath,
		Modules:      fromJSON[[]domain.CourseModule](m.Modules),
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func enrollmentToModel(e domain.Enrollment) EnrollmentModel {
	return EnrollmentModel{
		ID:               e.ID,
		UserID:           e.UserID,
		CourseID:         e.CourseID,
		ModulesCompleted: toJSON(e.ModulesCompleted),
		Progress:         e.Progress,
		QuizScores:       toJSON(e.QuizScores),
		EnrolledAt:       e.EnrolledAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func enrollmentFromModel(m EnrollmentModel) domain.Enrollment {
	return domain.Enrollment{
		ID:               m.ID,
		UserID:           m.UserID,
		CourseID:         m.CourseID,
		ModulesCompleted: fromJSON[[]int](m.ModulesCompleted),
		Progress:         m.Progress,
		QuizScores:       fromJSON[[]domain.QuizScore](m.QuizScores),
		EnrolledAt:       m.EnrolledAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func sessionToModel(s domain.Session) SessionModel {
	return SessionModel{
		ID:             s.ID,
		EntrepreneurID: s.EntrepreneurID,
		MentorID:       s.MentorID,
		Topic:          s.Topic,
		StartAt:        s.StartAt,
		EndAt:          s.EndAt,
		MeetingLink:    s.MeetingLink,
		Notes:          s.Notes,
		Status:         string(s.Status),
		Reminders:      toJSON(s.Reminders),
		History:        toJSON(s.History),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func sessionFromModel(m SessionModel) domain.Session {
	return domain.Session{
		ID:             m.ID,
		EntrepreneurID: m.EntrepreneurID,
		MentorID:       m.MentorID,
		Topic:          m.Topic,
		StartAt:        m.StartAt,
		EndAt:          m.EndAt,
		MeetingLink:    m.MeetingLink,
		Notes:          m.Notes,
		Status:         domain.SessionStatus(m.Status),
		Reminders:      fromJSON[[]domain.Reminder](m.Reminders),
		History:        fromJSON[[]domain.SessionEvent](m.History),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
