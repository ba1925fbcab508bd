package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Store struct {
	db *sql.DB
}

type GuildSettings struct {
	GuildID          string
	GuildName        string
	Prefix           string
	Language         string
	HeartsEnabled    bool
	ThanksEnabled    bool
	LevelsEnabled    bool
	MentionEnabled   bool
	AntiphishEnabled bool
}

type PipelineEvent struct {
	ID        int64
	GuildID   string
	Event     string
	Detail    string
	CreatedAt time.Time
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func (s *Store) Migrate() error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return err
	}

	var files []string
	for _, entry := range entries {
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := migrations.ReadFile(path.Join("migrations", file))
		if err != nil {
			return err
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			if isIgnorableMigrationError(err) {
				continue
			}
			return fmt.Errorf("migration %s failed: %w", file, err)
		}
	}
	return nil
}

// EnsureGuildSettings materializes the default record for a guild on
// first access. The insert is a no-op when the row already exists, so
// repeated calls for the same guild never reset stored settings.
func (s *Store) EnsureGuildSettings(ctx context.Context, guildID, guildName string, defaults GuildSettings) (GuildSettings, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO guild_settings (
			guild_id, guild_name, prefix, language,
			hearts_enabled, thanks_enabled, levels_enabled, mention_enabled, antiphish_enabled
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		guildID,
		guildName,
		defaults.Prefix,
		defaults.Language,
		boolToInt(defaults.HeartsEnabled),
		boolToInt(defaults.ThanksEnabled),
		boolToInt(defaults.LevelsEnabled),
		boolToInt(defaults.MentionEnabled),
		boolToInt(defaults.AntiphishEnabled),
	)
	if err != nil {
		return GuildSettings{}, err
	}

	if guildName != "" {
		_, err = s.db.ExecContext(ctx, `
			UPDATE guild_settings SET guild_name = ? WHERE guild_id = ? AND guild_name != ?
		`, guildName, guildID, guildName)
		if err != nil {
			return GuildSettings{}, err
		}
	}

	return s.GetGuildSettings(ctx, guildID)
}

func (s *Store) GetGuildSettings(ctx context.Context, guildID string) (GuildSettings, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT guild_id, guild_name, prefix, language,
		hearts_enabled, thanks_enabled, levels_enabled, mention_enabled, antiphish_enabled
		FROM guild_settings WHERE guild_id = ?`, guildID)

	var result GuildSettings
	var hearts, thanks, levels, mention, antiphish int
	err := row.Scan(
		&result.GuildID,
		&result.GuildName,
		&result.Prefix,
		&result.Language,
		&hearts,
		&thanks,
		&levels,
		&mention,
		&antiphish,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GuildSettings{}, ErrNotFound
		}
		return GuildSettings{}, err
	}
	result.HeartsEnabled = hearts == 1
	result.ThanksEnabled = thanks == 1
	result.LevelsEnabled = levels == 1
	result.MentionEnabled = mention == 1
	result.AntiphishEnabled = antiphish == 1
	return result, nil
}

var ErrNotFound = errors.New("record not found")

func (s *Store) UpsertGuildSettings(ctx context.Context, settings GuildSettings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO guild_settings (
			guild_id, guild_name, prefix, language,
			hearts_enabled, thanks_enabled, levels_enabled, mention_enabled, antiphish_enabled
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(guild_id) DO UPDATE SET
			guild_name = excluded.guild_name,
			prefix = excluded.prefix,
			language = excluded.language,
			hearts_enabled = excluded.hearts_enabled,
			thanks_enabled = excluded.thanks_enabled,
			levels_enabled = excluded.levels_enabled,
			mention_enabled = excluded.mention_enabled,
			antiphish_enabled = excluded.antiphish_enabled
	`,
		settings.GuildID,
		settings.GuildName,
		settings.Prefix,
		settings.Language,
		boolToInt(settings.HeartsEnabled),
		boolToInt(settings.ThanksEnabled),
		boolToInt(settings.LevelsEnabled),
		boolToInt(settings.MentionEnabled),
		boolToInt(settings.AntiphishEnabled),
	)
	return err
}

func (s *Store) RecordPipelineEvent(ctx context.Context, guildID, event, detail string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pipeline_events (guild_id, event, detail, created_at)
		VALUES (?, ?, ?, ?)
	`, guildID, event, detail, time.Now().Unix())
	return err
}

func (s *Store) ListPipelineEvents(ctx context.Context, guildID string, since time.Time) ([]PipelineEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, event, detail, created_at
		FROM pipeline_events
		WHERE guild_id = ? AND created_at >= ?
		ORDER BY created_at DESC
	`, guildID, since.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []PipelineEvent
	for rows.Next() {
		var event PipelineEvent
		var created int64
		if err := rows.Scan(&event.ID, &event.GuildID, &event.Event, &event.Detail, &created); err != nil {
			return nil, err
		}
		event.CreatedAt = time.Unix(created, 0)
		events = append(events, event)
	}
	return events, rows.Err()
}

// PurgeGuild removes every stored row for a guild across all tables.
func (s *Store) PurgeGuild(ctx context.Context, guildID string) error {
	tables := []string{
		"guild_settings",
		"user_levels",
		"user_hearts",
		"pipeline_events",
		"domain_allowlist",
		"domain_blocklist",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE guild_id = ?`, guildID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) AddDomainAllow(ctx context.Context, guildID, domain string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO domain_allowlist (guild_id, domain) VALUES (?, ?)`, guildID, strings.ToLower(domain))
	return err
}

func (s *Store) ListDomainAllow(ctx context.Context, guildID string) ([]string, error) {
	return s.listDomains(ctx, "domain_allowlist", guildID)
}

func (s *Store) AddDomainBlock(ctx context.Context, guildID, domain string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO domain_blocklist (guild_id, domain) VALUES (?, ?)`, guildID, strings.ToLower(domain))
	return err
}

func (s *Store) ListDomainBlock(ctx context.Context, guildID string) ([]string, error) {
	return s.listDomains(ctx, "domain_blocklist", guildID)
}

func (s *Store) listDomains(ctx context.Context, table, guildID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT domain FROM `+table+` WHERE guild_id = ? ORDER BY domain`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var domain string
		if err := rows.Scan(&domain); err != nil {
			return nil, err
		}
		domains = append(domains, domain)
	}
	return domains, rows.Err()
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func isIgnorableMigrationError(err error) bool {
	if err == nil {
		return false
	}
	message := err.Error()
	return strings.Contains(message, "duplicate column name") || strings.Contains(message, "already exists")
}
