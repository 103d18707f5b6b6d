package database

import (
	"context"
	"database/sql"
	"time"
)

func (db *PgRepository) CreateAccount(params CreateAccountParams) (User, error) {
	res := db.conn.QueryRow(
		"INSERT INTO accounts (username, email, password_hash, created_at) "+
			"VALUES ($1, $2, $3, $4) RETURNING id, username, email, is_admin",
		params.Username,
		params.EmailAddress,
		params.PasswordHash,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Username,
		&u.EmailAddress,
		&u.IsAdmin,
	)

	return u, err
}

func (db *PgRepository) GetAccountById(accountId int) (User, error) {
	res := db.conn.QueryRow(
		"SELECT id, username, email, password_hash, is_admin, created_at, updated_at "+
			"FROM accounts WHERE id = $1",
		accountId,
	)

	return scanUser(res)
}

func (db *PgRepository) GetAccountByEmail(email string) (User, error) {
	res := db.conn.QueryRow(
		"SELECT id, username, email, password_hash, is_admin, created_at, updated_at "+
			"FROM accounts WHERE email = $1",
		email,
	)

	return scanUser(res)
}

func scanUser(res *sql.Row) (User, error) {
	var u User
	var updatedAt sql.NullTime
	err := res.Scan(
		&u.Id,
		&u.Username,
		&u.EmailAddress,
		&u.PasswordHash,
		&u.IsAdmin,
		&u.CreatedAt,
		&updatedAt,
	)
	if updatedAt.Valid {
		u.UpdatedAt = updatedAt.Time
	}

	return u, err
}

func (db *PgRepository) CreateChatMessage(params CreateChatMessageParams) (ChatMessage, error) {
	var imagePath sql.NullString
	if params.ImagePath != "" {
		imagePath = sql.NullString{String: params.ImagePath, Valid: true}
	}

	res := db.conn.QueryRow(
		"INSERT INTO chat_messages (sender_id, receiver_id, content, image_path, created_at) "+
			"VALUES ($1, $2, $3, $4, $5) RETURNING id, sender_id, receiver_id, content, image_path, created_at",
		params.SenderId,
		params.ReceiverId,
		params.Content,
		imagePath,
		time.Now().UTC(),
	)

	return scanChatMessage(res)
}

func (db *PgRepository) GetChatMessage(ctx context.Context, id int64) (ChatMessage, error) {
	res := db.conn.QueryRowContext(ctx,
		"SELECT id, sender_id, receiver_id, content, image_path, created_at "+
			"FROM chat_messages WHERE id = $1",
		id,
	)

	return scanChatMessage(res)
}

func scanChatMessage(res *sql.Row) (ChatMessage, error) {
	var m ChatMessage
	err := res.Scan(
		&m.Id,
		&m.SenderId,
		&m.ReceiverId,
		&m.Content,
		&m.ImagePath,
		&m.CreatedAt,
	)

	return m, err
}

func (db *PgRepository) DeleteChatMessage(ctx context.Context, id int64) (bool, error) {
	res, err := db.conn.ExecContext(ctx, "DELETE FROM chat_messages WHERE id = $1", id)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (db *PgRepository) GetConversation(accountId, friendId, limit int) ([]ChatMessage, error) {
	rows, err := db.conn.Query(
		"SELECT id, sender_id, receiver_id, content, image_path, created_at FROM chat_messages "+
			"WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1) "+
			"ORDER BY created_at DESC LIMIT $3",
		accountId,
		friendId,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(
			&m.Id,
			&m.SenderId,
			&m.ReceiverId,
			&m.Content,
			&m.ImagePath,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

func (db *PgRepository) CreateNotification(params CreateNotificationParams) (Notification, error) {
	res := db.conn.QueryRow(
		"INSERT INTO notifications (account_id, kind, content, created_at) "+
			"VALUES ($1, $2, $3, $4) RETURNING id, account_id, kind, content, read, created_at",
		params.UserId,
		params.Kind,
		params.Content,
		time.Now().UTC(),
	)

	var n Notification
	err := res.Scan(
		&n.Id,
		&n.UserId,
		&n.Kind,
		&n.Content,
		&n.Read,
		&n.CreatedAt,
	)

	return n, err
}

func (db *PgRepository) ListNotifications(accountId, limit int) ([]Notification, error) {
	rows, err := db.conn.Query(
		"SELECT id, account_id, kind, content, read, created_at FROM notifications "+
			"WHERE account_id = $1 ORDER BY created_at DESC LIMIT $2",
		accountId,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(
			&n.Id,
			&n.UserId,
			&n.Kind,
			&n.Content,
			&n.Read,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

func (db *PgRepository) MarkNotificationsRead(accountId int) error {
	_, err := db.conn.Exec(
		"UPDATE notifications SET read = TRUE WHERE account_id = $1 AND read = FALSE",
		accountId,
	)

	return err
}

func (db *PgRepository) UnreadNotificationCount(ctx context.Context, accountId int) (int, error) {
	res := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE account_id = $1 AND read = FALSE",
		accountId,
	)

	var count int
	err := res.Scan(&count)

	return count, err
}

func (db *PgRepository) DeleteOldAds(ctx context.Context, olderThan time.Duration) (int64, error) {
	res, err := db.conn.ExecContext(ctx,
		"DELETE FROM forum_ads WHERE created_at < $1",
		time.Now().UTC().Add(-olderThan),
	)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
