package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/ykvlv/etymology-bot/internal/domain"
)

// Timestamps are stored as unix milliseconds.

func toNullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UTC().UnixMilli(), Valid: true}
}

func fromNullMillis(ns sql.NullInt64) *time.Time {
	if !ns.Valid {
		return nil
	}
	t := time.UnixMilli(ns.Int64).UTC()
	return &t
}

func toNullString(s *domain.Language) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*s), Valid: true}
}

func toNullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

// interests are a JSON array; NULL means the onboarding step was never completed.
func encodeInterests(in *[]string) (sql.NullString, error) {
	if in == nil {
		return sql.NullString{}, nil
	}
	list := *in
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeInterests(ns sql.NullString) ([]string, bool, error) {
	if !ns.Valid {
		return nil, false, nil
	}
	out := []string{}
	if err := json.Unmarshal([]byte(ns.String), &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// row mirrors the users table.
type row struct {
	chatID    int64
	language  sql.NullString
	interests sql.NullString
	interval  sql.NullInt64
	lastSent  sql.NullInt64
	updatedAt int64
}

type scanner interface {
	Scan(dest ...any) error
}

const selectColumns = `chat_id, language, interests, interval_hours, last_sent_at, updated_at`

func scanProfile(s scanner) (*domain.Profile, error) {
	var r row
	if err := s.Scan(&r.chatID, &r.language, &r.interests, &r.interval, &r.lastSent, &r.updatedAt); err != nil {
		return nil, err
	}
	interests, set, err := decodeInterests(r.interests)
	if err != nil {
		return nil, err
	}
	return &domain.Profile{
		ChatID:        r.chatID,
		Language:      domain.Language(r.language.String),
		Interests:     interests,
		HasInterests:  set,
		IntervalHours: int(r.interval.Int64),
		LastSentAt:    fromNullMillis(r.lastSent),
		UpdatedAt:     time.UnixMilli(r.updatedAt).UTC(),
	}, nil
}
