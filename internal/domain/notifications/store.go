package notifications

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// RegisterToken stores a device token, refreshing its age if the same
// user/token pair registers again.
func (s *Store) RegisterToken(ctx context.Context, email, token string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO push_tokens (email, token)
    VALUES ($1,$2)
    ON CONFLICT (email, token) DO UPDATE SET created_at = now()
  `, email, token)
	return err
}

func (s *Store) TokensFor(ctx context.Context, email string) ([]DeviceToken, error) {
	return s.queryTokens(ctx, `
    SELECT id, email, token, created_at
    FROM push_tokens
    WHERE email = $1
  `, email)
}

func (s *Store) TokensForAll(ctx context.Context, emails []string) ([]DeviceToken, error) {
	return s.queryTokens(ctx, `
    SELECT id, email, token, created_at
    FROM push_tokens
    WHERE email = ANY($1)
  `, emails)
}

func (s *Store) DeleteToken(ctx context.Context, id string) error {
	_, err := s.DB.Exec(ctx, `DELETE FROM push_tokens WHERE id = $1`, id)
	return err
}

// DeleteExpired removes tokens older than the cutoff; the scheduled
// cleanup job runs this daily.
func (s *Store) DeleteExpired(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.DB.Exec(ctx, `DELETE FROM push_tokens WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// PurgeUser removes all push data for one employee; part of the
// dual-system employee delete.
func (s *Store) PurgeUser(ctx context.Context, email string) error {
	if _, err := s.DB.Exec(ctx, `DELETE FROM push_tokens WHERE email = $1`, email); err != nil {
		return err
	}
	_, err := s.DB.Exec(ctx, `DELETE FROM notifications WHERE email = $1`, email)
	return err
}

func (s *Store) CreateNotification(ctx context.Context, n Notification) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO notifications (email, ntype, title, body, url)
    VALUES ($1,$2,$3,$4,$5)
  `, n.Email, n.Type, n.Title, n.Body, n.URL)
	return err
}

func (s *Store) ListNotifications(ctx context.Context, email string, limit, offset int) ([]Notification, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, email, ntype, title, body, url, read, created_at
    FROM notifications
    WHERE email = $1
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, email, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Email, &n.Type, &n.Title, &n.Body, &n.URL, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (s *Store) MarkRead(ctx context.Context, email, id string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE notifications SET read = true WHERE id = $1 AND email = $2
  `, id, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) queryTokens(ctx context.Context, sql string, args ...any) ([]DeviceToken, error) {
	rows, err := s.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []DeviceToken
	for rows.Next() {
		var t DeviceToken
		if err := rows.Scan(&t.ID, &t.Email, &t.Token, &t.CreatedAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
