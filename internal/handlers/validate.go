// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Validation limits for request fields. Name and title limits mirror the
// corresponding column sizes.
const (
	maxUsernameLen     = 48
	minPasswordLen     = 8
	maxPasswordLen     = 128
	maxTitleLen        = 160
	maxExcerptLen      = 1_000
	maxContentLen      = 200_000
	maxCategoryNameLen = 64
	maxTagNameLen      = 48
	maxDescriptionLen  = 1_000

	defaultPageLimit = 20
	maxPageLimit     = 100
)

// validateUsername checks a username and returns the first problem found,
// or "" if it is acceptable.
func validateUsername(username string) string {
	username = strings.TrimSpace(username)
	if username == "" {
		return "username is required"
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return "username is too long (max 48 characters)"
	}
	return ""
}

// validateEmail checks an email address syntactically.
func validateEmail(email string) string {
	if email == "" {
		return "email is required"
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "email is not valid"
	}
	return ""
}

// validatePassword enforces the password length policy.
func validatePassword(password string) string {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return "password is too short (min 8 characters)"
	}
	if utf8.RuneCountInString(password) > maxPasswordLen {
		return "password is too long (max 128 characters)"
	}
	return ""
}

// validateArticle checks article content fields.
func validateArticle(title string, excerpt, contentMD *string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "title is required"
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "title is too long (max 160 characters)"
	}
	if excerpt != nil && utf8.RuneCountInString(*excerpt) > maxExcerptLen {
		return "excerpt is too long (max 1,000 characters)"
	}
	if contentMD != nil && utf8.RuneCountInString(*contentMD) > maxContentLen {
		return "content is too long (max 200,000 characters)"
	}
	return ""
}

// urlParamUUID extracts and parses a UUID path parameter.
func urlParamUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}

// pagination reads skip/limit query parameters with sane bounds.
func pagination(r *http.Request) (skip, limit int) {
	skip, _ = strconv.Atoi(r.URL.Query().Get("skip"))
	if skip < 0 {
		skip = 0
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return skip, limit
}
