package services

import (
	"github.com/linkforge/linkforge-backend/internal/types"
	"strings"
	"unicode/utf8"
)

// connectionNoteCharLimit is the platform ceiling for connection request
// notes. Longer messages are flagged for manual editing, never dropped.
const connectionNoteCharLimit = 300

const flagNotePrefix = "EXCEEDS_300_CHARS"

// renderTemplate substitutes {token} placeholders with contact fields.
// Tokens without a populated source render as empty strings, which keeps
// templates forward-compatible with signals we don't collect yet.
func renderTemplate(body string, contact *types.Contact) string {
	replacements := map[string]string{
		"first_name":        contact.FirstName,
		"last_name":         contact.LastName,
		"company":           contact.Company,
		"title":             contact.Title,
		"mutual_connection": "",
		"recent_post":       "",
		"category_context":  "",
		"custom":            "",
	}
	rendered := body
	for token, value := range replacements {
		placeholder := "{" + token + "}"
		if value != "" {
			rendered = strings.ReplaceAll(rendered, placeholder, value)
			continue
		}
		// An empty token swallows one adjacent space so its sentence closes
		// up; spacing elsewhere in the body is the author's to keep.
		rendered = strings.ReplaceAll(rendered, placeholder+" ", "")
		rendered = strings.ReplaceAll(rendered, " "+placeholder, "")
		rendered = strings.ReplaceAll(rendered, placeholder, "")
	}
	return strings.TrimSpace(rendered)
}

// exceedsCharLimit counts characters, not bytes; the platform limit is on
// what the recipient reads.
func exceedsCharLimit(message string) bool {
	return utf8.RuneCountInString(message) > connectionNoteCharLimit
}
