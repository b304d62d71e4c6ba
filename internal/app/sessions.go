package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"greenlaunch/internal/util"
	"greenlaunch/pkg/domain"
	"greenlaunch/pkg/store"
)

// Reminder kinds seeded on every new session. The worker dispatches each
// one relative to the session start time.
const (
	ReminderDayBefore  = "24h"
	ReminderHourBefore = "1h"
)

var validSessionStatuses = map[domain.SessionStatus]bool{
	domain.SessionScheduled: true,
	domain.SessionCompleted: true,
	domain.SessionCancelled: true,
}

// SessionInput carries caller-supplied fields for scheduling a session.
type SessionInput struct {
	EntrepreneurID string
	Topic          string
	StartAt        time.Time
	EndAt          time.Time
	MeetingLink    string
	Notes          string
}

// CreateSession schedules a mentoring session. The caller (a mentor, or an
// admin acting as one) becomes the session's mentor. Reminder dispatch is
// enqueued best-effort and never fails the booking.
func (a *App) CreateSession(ctx context.Context, caller domain.Profile, in SessionInput) (domain.Session, error) {
	if in.EntrepreneurID == "" || in.StartAt.IsZero() || in.EndAt.IsZero() || strings.TrimSpace(in.MeetingLink) == "" {
		return domain.Session{}, Validationf("entrepreneurId, startAt, endAt, meetingLink are required")
	}
	topic := strings.TrimSpace(in.Topic)
	if topic == "" {
		topic = "Coaching session"
	}
	now := time.Now().UTC()
	session := domain.Session{
		ID:             util.NewID(),
		EntrepreneurID: in.EntrepreneurID,
		MentorID:       caller.UID,
		Topic:          topic,
		StartAt:        in.StartAt.UTC(),
		EndAt:          in.EndAt.UTC(),
		MeetingLink:    in.MeetingLink,
		Notes:          in.Notes,
		Status:         domain.SessionScheduled,
		Reminders: []domain.Reminder{
			{Type: ReminderDayBefore},
			{Type: ReminderHourBefore},
		},
		History: []domain.SessionEvent{
			{Action: "created", By: caller.UID, At: now, Status: domain.SessionScheduled},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.CreateSession(session); err != nil {
		return domain.Session{}, err
	}
	a.enqueueReminders(ctx, session)
	return session, nil
}

func (a *App) enqueueReminders(ctx context.Context, session domain.Session) {
	if a.reminders == nil {
		return
	}
	for _, r := range session.Reminders {
		if err := a.reminders.Enqueue(ctx, session.ID, r.Type); err != nil {
			slog.Warn("enqueue reminder failed",
				"session_id", session.ID,
				"reminder", r.Type,
				"error", err)
		}
	}
}

// ListMySessions returns the caller's sessions: their own bookings for
// entrepreneurs and mentors, everything for admins and business support.
func (a *App) ListMySessions(caller domain.Profile) ([]domain.Session, error) {
	switch caller.Role {
	case domain.RoleEntrepreneur:
		return a.store.ListSessionsByEntrepreneur(caller.UID)
	case domain.RoleMentor:
		return a.store.ListSessionsByMentor(caller.UID)
	default:
		return a.store.ListSessions()
	}
}

// SessionPatch holds the optional fields of a session update. Nil means
// leave unchanged.
type SessionPatch struct {
	Status *domain.SessionStatus
	Notes  *string
}

// PatchSession updates a session's status or notes. Only the two
// participants and admins may modify a session; every change lands in the
// history log.
func (a *App) PatchSession(caller domain.Profile, sessionID string, patch SessionPatch) (domain.Session, error) {
	if patch.Status != nil && !validSessionStatuses[*patch.Status] {
		return domain.Session{}, Validationf("invalid status. Allowed: %s, %s, %s",
			domain.SessionScheduled, domain.SessionCompleted, domain.SessionCancelled)
	}
	updated, err := a.store.UpdateSession(sessionID, func(s *domain.Session) error {
		if caller.Role != domain.RoleAdmin && !s.IsParticipant(caller.UID) {
			return Forbidden("forbidden")
		}
		now := time.Now().UTC()
		if patch.Status != nil {
			s.Status = *patch.Status
		}
		if patch.Notes != nil {
			s.Notes = *patch.Notes
		}
		s.History = append(s.History, domain.SessionEvent{
			Action: "updated",
			By:     caller.UID,
			At:     now,
			Status: s.Status,
		})
		s.UpdatedAt = now
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.Session{}, NotFound("session not found")
	}
	return updated, err
}

// MarkReminderScheduled flips the named reminder once the worker has
// dispatched it. Unknown reminder types are ignored.
func MarkReminderScheduled(s store.Store, sessionID, reminder string) error {
	_, err := s.UpdateSession(sessionID, func(session *domain.Session) error {
		for i := range session.Reminders {
			if session.Reminders[i].Type == reminder {
				session.Reminders[i].Scheduled = true
			}
		}
		session.UpdatedAt = time.Now().UTC()
		return nil
	})
	return err
}
