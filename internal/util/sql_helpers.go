package util

import (
	"database/sql"
	"time"
)

// StringToNullString converts a string to sql.NullString.
// An empty string is treated as NULL.
func StringToNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// NullStringToString returns the string or "" for NULL.
func NullStringToString(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}

// DBTime normalises a timestamp before it is written: UTC, whole seconds.
// Keeping one layout lets sqlite compare stored values as text.
func DBTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
