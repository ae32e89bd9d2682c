package models

import (
	"strings"
	"time"

	dErrors "kinfolk/pkg/domain-errors"
	pstrings "kinfolk/pkg/platform/strings"
)

// Export is a rendered report kept for download until ExpiresAt.
type Export struct {
	ID          string    `json:"id"`
	Format      string    `json:"format"`
	Title       string    `json:"title"`
	ContentType string    `json:"content_type"`
	ETag        string    `json:"etag"`
	RootIDs     []string  `json:"root_ids"`
	People      int       `json:"people"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Body        []byte    `json:"body"`
}

// Expired reports whether the export may no longer be served at now.
func (e *Export) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// Filename is the download name offered to browsers.
func (e *Export) Filename(extension string) string {
	return "family-report-" + e.ID + extension
}

// ExportRequest asks for one report covering the descendants of the given
// roots, or of every ancestor in the family when AllAncestors is set.
type ExportRequest struct {
	RootID       string   `json:"root_id"`
	RootIDs      []string `json:"root_ids"`
	AllAncestors bool     `json:"all_ancestors"`
	Format       string   `json:"format"`
}

// Normalize folds root_id into root_ids, dropping blanks and duplicates.
func (r *ExportRequest) Normalize() {
	ids := append([]string{r.RootID}, r.RootIDs...)
	r.RootIDs = pstrings.DedupeAndTrim(ids)
	r.RootID = ""
	r.Format = strings.ToLower(strings.TrimSpace(r.Format))
}

func (r *ExportRequest) Validate() error {
	if r.AllAncestors && len(r.RootIDs) > 0 {
		return dErrors.New(dErrors.CodeValidation, "root_ids and all_ancestors are mutually exclusive")
	}
	if !r.AllAncestors && len(r.RootIDs) == 0 {
		return dErrors.New(dErrors.CodeValidation, "root_id is required unless all_ancestors is set")
	}
	return nil
}
