package notifications

import (
	"context"
	"log/slog"
	"time"
)

// AdminLookup lists the admin recipients for fan-out notifications.
type AdminLookup interface {
	ListAdminEmails(ctx context.Context) ([]string, error)
}

// Mailer mirrors notifications over email when configured.
type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	Store       *Store
	Pusher      Pusher
	Admins      AdminLookup
	Mailer      Mailer
	DefaultFrom string
}

func New(store *Store, pusher Pusher, admins AdminLookup, mailer Mailer, defaultFrom string) *Service {
	if pusher == nil {
		pusher = NoopPusher{}
	}
	return &Service{Store: store, Pusher: pusher, Admins: admins, Mailer: mailer, DefaultFrom: defaultFrom}
}

func (s *Service) RegisterToken(ctx context.Context, email, token string) error {
	return s.Store.RegisterToken(ctx, email, token)
}

// NotifyUser records an in-app notification and fans the payload out to the
// user's device tokens. Delivery is best-effort: a failed or expired token
// is pruned and the rest continue.
func (s *Service) NotifyUser(ctx context.Context, email string, payload Payload) {
	if payload.Timestamp.IsZero() {
		payload.Timestamp = time.Now().UTC()
	}

	if err := s.Store.CreateNotification(ctx, Notification{
		Email: email,
		Type:  payload.Type,
		Title: payload.Title,
		Body:  payload.Body,
		URL:   payload.URL,
	}); err != nil {
		slog.Warn("notification insert failed", "email", email, "err", err)
	}

	tokens, err := s.Store.TokensFor(ctx, email)
	if err != nil {
		slog.Warn("push token lookup failed", "email", email, "err", err)
		return
	}
	s.fanOut(ctx, tokens, payload)

	if s.Mailer != nil {
		if err := s.Mailer.Send(ctx, s.DefaultFrom, email, payload.Title, payload.Body); err != nil {
			slog.Warn("notification email send failed", "email", email, "err", err)
		}
	}
}

// NotifyAdmins fans one payload out to every admin.
func (s *Service) NotifyAdmins(ctx context.Context, payload Payload) {
	admins, err := s.Admins.ListAdminEmails(ctx)
	if err != nil {
		slog.Warn("admin lookup failed", "err", err)
		return
	}
	for _, email := range admins {
		s.NotifyUser(ctx, email, payload)
	}
}

func (s *Service) fanOut(ctx context.Context, tokens []DeviceToken, payload Payload) {
	now := time.Now().UTC()
	for _, token := range tokens {
		if token.Expired(now) {
			if err := s.Store.DeleteToken(ctx, token.ID); err != nil {
				slog.Warn("expired token prune failed", "tokenId", token.ID, "err", err)
			}
			continue
		}
		if err := s.Pusher.Push(ctx, token.Token, payload); err != nil {
			slog.Warn("push send failed, pruning token", "tokenId", token.ID, "err", err)
			if pruneErr := s.Store.DeleteToken(ctx, token.ID); pruneErr != nil {
				slog.Warn("token prune failed", "tokenId", token.ID, "err", pruneErr)
			}
		}
	}
}

// CleanupExpiredTokens is the scheduled-job entry point.
func (s *Service) CleanupExpiredTokens(ctx context.Context, now time.Time) (int, error) {
	return s.Store.DeleteExpired(ctx, now.Add(-TokenMaxAge))
}

func (s *Service) List(ctx context.Context, email string, limit, offset int) ([]Notification, error) {
	return s.Store.ListNotifications(ctx, email, limit, offset)
}

func (s *Service) MarkRead(ctx context.Context, email, id string) error {
	return s.Store.MarkRead(ctx, email, id)
}
