package notifications

import (
	"context"
	"log/slog"
)

// Mailer delivers notification emails. Delivery is best-effort: failures
// are logged and never abort the operation that triggered them.
type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	store       StoreAPI
	Mailer      Mailer
	DefaultFrom string
}

func New(store StoreAPI, mailer Mailer) *Service {
	return &Service{store: store, Mailer: mailer, DefaultFrom: "no-reply@example.com"}
}

func (s *Service) Create(ctx context.Context, userID, ntype, title, body string) error {
	if err := s.store.CreateNotification(ctx, userID, ntype, title, body); err != nil {
		return err
	}

	if s.Mailer == nil {
		return nil
	}

	email, err := s.store.UserEmail(ctx, userID)
	if err != nil {
		slog.Warn("notification email lookup failed", "err", err)
		return nil
	}
	if email == "" {
		return nil
	}
	if err := s.Mailer.Send(ctx, s.DefaultFrom, email, title, body); err != nil {
		slog.Warn("notification email send failed", "err", err)
	}
	return nil
}

// Notify is Create without an error return, for fire-and-forget call
// sites after state changes.
func (s *Service) Notify(ctx context.Context, userID, ntype, title, body string) {
	if err := s.Create(ctx, userID, ntype, title, body); err != nil {
		slog.Warn("notification create failed", "type", ntype, "err", err)
	}
}

// NotifyTeacher resolves the teacher's login account before notifying.
// Teachers without an account are skipped silently.
func (s *Service) NotifyTeacher(ctx context.Context, teacherID, ntype, title, body string) {
	userID, err := s.store.UserIDForTeacher(ctx, teacherID)
	if err != nil {
		slog.Warn("notification teacher lookup failed", "teacherId", teacherID, "err", err)
		return
	}
	if userID == "" {
		return
	}
	s.Notify(ctx, userID, ntype, title, body)
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, userID, limit, offset)
}

func (s *Service) Count(ctx context.Context, userID string) (int, error) {
	return s.store.CountNotifications(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.store.MarkRead(ctx, userID, notificationID)
}
