package storage

import (
	"context"
	"database/sql"
	"errors"
)

type UserLevel struct {
	GuildID  string
	UserID   string
	Points   int
	Messages int
}

// IncrementLevel adds points for one observed message. The update is a
// single statement so concurrently dispatched messages interleave
// safely without a lock on the caller's side.
func (s *Store) IncrementLevel(ctx context.Context, guildID, userID string, points int) (UserLevel, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_levels (guild_id, user_id, points, messages)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(guild_id, user_id) DO UPDATE SET
			points = points + excluded.points,
			messages = messages + 1
	`, guildID, userID, points)
	if err != nil {
		return UserLevel{}, err
	}
	return s.GetLevel(ctx, guildID, userID)
}

func (s *Store) GetLevel(ctx context.Context, guildID, userID string) (UserLevel, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT guild_id, user_id, points, messages
		FROM user_levels
		WHERE guild_id = ? AND user_id = ?
	`, guildID, userID)

	var level UserLevel
	err := row.Scan(&level.GuildID, &level.UserID, &level.Points, &level.Messages)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UserLevel{GuildID: guildID, UserID: userID}, nil
		}
		return UserLevel{}, err
	}
	return level, nil
}

// IncrementHearts raises a user's hearts tally by delta, atomically.
func (s *Store) IncrementHearts(ctx context.Context, guildID, userID string, delta int) (int, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_hearts (guild_id, user_id, count)
		VALUES (?, ?, ?)
		ON CONFLICT(guild_id, user_id) DO UPDATE SET
			count = count + excluded.count
	`, guildID, userID, delta)
	if err != nil {
		return 0, err
	}
	return s.GetHearts(ctx, guildID, userID)
}

func (s *Store) GetHearts(ctx context.Context, guildID, userID string) (int, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT count FROM user_hearts WHERE guild_id = ? AND user_id = ?
	`, guildID, userID)

	var count int
	err := row.Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}
