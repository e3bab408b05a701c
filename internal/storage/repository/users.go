package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/danengatsby/poesisverse/internal/models"
)

const userColumns = `uid, username, email, password_hash, external_id, role,
			      is_subscribed, subscribed_at, subscription_end_date,
			      stripe_customer_id, stripe_subscription_id, email_verified, created_at`

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
// Конфликт по уникальности username или email отдаётся как models.ErrUsernameTaken.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (username, email, password_hash, external_id, role)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.ExternalID, user.Role).Scan(&newUID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return "", fmt.Errorf("%s: %w", op, models.ErrUsernameTaken)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE uid = $1`
	return s.scanUserRow(op, s.DB.QueryRowContext(ctx, query, userUID))
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE username = $1`
	return s.scanUserRow(op, s.DB.QueryRowContext(ctx, query, username))
}

// GetUserByStripeCustomerID возвращает пользователя по идентификатору клиента
// в платёжном шлюзе. Используется при обработке webhook-событий.
func (s *Storage) GetUserByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	const op = "storage.GetUserByStripeCustomerID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE stripe_customer_id = $1`
	return s.scanUserRow(op, s.DB.QueryRowContext(ctx, query, customerID))
}

// ListUsers возвращает список пользователей с пагинацией.
func (s *Storage) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  ORDER BY created_at
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeleteUser физически удаляет пользователя и возвращает количество удалённых строк.
func (s *Storage) DeleteUser(ctx context.Context, userUID string) (int, error) {
	const op = "storage.DeleteUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM users WHERE uid = $1`
	result, err := s.DB.ExecContext(ctx, query, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// UpdateSubscription записывает активацию подписки: флаг и обе даты.
// Обновления не сериализуются между собой, последняя запись побеждает.
func (s *Storage) UpdateSubscription(ctx context.Context, userUID string, isSubscribed bool, subscribedAt, endDate time.Time) error {
	const op = "storage.UpdateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET is_subscribed = $1,
			      subscribed_at = $2,
			      subscription_end_date = $3
			  WHERE uid = $4`
	result, err := s.DB.ExecContext(ctx, query, isSubscribed, subscribedAt, endDate, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

// SetSubscriptionFlag выставляет хранимый флаг подписки, не трогая даты.
// Используется внешней сверкой по событиям платёжного шлюза.
func (s *Storage) SetSubscriptionFlag(ctx context.Context, userUID string, isSubscribed bool) error {
	const op = "storage.SetSubscriptionFlag"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET is_subscribed = $1
			  WHERE uid = $2`
	_, err := s.DB.ExecContext(ctx, query, isSubscribed, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetStripeCustomerID сохраняет идентификатор клиента платёжного шлюза.
func (s *Storage) SetStripeCustomerID(ctx context.Context, userUID, customerID string) error {
	const op = "storage.SetStripeCustomerID"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET stripe_customer_id = $1
			  WHERE uid = $2`
	_, err := s.DB.ExecContext(ctx, query, customerID, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetStripeSubscriptionID сохраняет идентификатор подписки платёжного шлюза.
func (s *Storage) SetStripeSubscriptionID(ctx context.Context, userUID, subscriptionID string) error {
	const op = "storage.SetStripeSubscriptionID"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET stripe_subscription_id = $1
			  WHERE uid = $2`
	_, err := s.DB.ExecContext(ctx, query, subscriptionID, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetEmailVerified помечает электронную почту пользователя подтверждённой.
func (s *Storage) SetEmailVerified(ctx context.Context, userUID string) error {
	const op = "storage.SetEmailVerified"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET email_verified = TRUE
			  WHERE uid = $1`
	_, err := s.DB.ExecContext(ctx, query, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Storage) scanUserRow(op string, row *sql.Row) (*models.User, error) {
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var passwordHash, externalID, stripeCustomerID, stripeSubscriptionID sql.NullString
	var subscribedAt, subscriptionEndDate sql.NullTime

	if err := row.Scan(&u.UID, &u.Username, &u.Email, &passwordHash, &externalID, &u.Role,
		&u.IsSubscribed, &subscribedAt, &subscriptionEndDate,
		&stripeCustomerID, &stripeSubscriptionID, &u.EmailVerified, &u.CreatedAt); err != nil {
		return nil, err
	}

	if passwordHash.Valid {
		u.PasswordHash = &passwordHash.String
	}
	if externalID.Valid {
		u.ExternalID = &externalID.String
	}
	if subscribedAt.Valid {
		u.SubscribedAt = &subscribedAt.Time
	}
	if subscriptionEndDate.Valid {
		u.SubscriptionEndDate = &subscriptionEndDate.Time
	}
	if stripeCustomerID.Valid {
		u.StripeCustomerID = &stripeCustomerID.String
	}
	if stripeSubscriptionID.Valid {
		u.StripeSubscriptionID = &stripeSubscriptionID.String
	}
	return u, nil
}
