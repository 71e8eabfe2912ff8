package model

import (
	"time"

	"github.com/relink-lab/contactsync/pkg/domain/types"
)

// DefaultAvatarURL is used when a synced record carries no profile image
const DefaultAvatarURL = "https://placehold.co/32x32/lightgrey/white"

// SyncRecord is one changed record returned by the remote platform's records
// API. The shape follows the Slack users sync: a top-level name plus a
// nested profile, with platform bookkeeping under _nango_metadata.
type SyncRecord struct {
	ID       types.ContactID   `json:"id"`
	Name     string            `json:"name"`
	TZ       string            `json:"tz,omitempty"`
	IsAdmin  bool              `json:"is_admin,omitempty"`
	TeamID   string            `json:"team_id,omitempty"`
	Profile  SyncRecordProfile `json:"profile"`
	Metadata SyncMetadata      `json:"_nango_metadata"`
}

// SyncRecordProfile is the nested profile block of a synced record
type SyncRecordProfile struct {
	DisplayName   string `json:"display_name,omitempty"`
	Email         string `json:"email,omitempty"`
	ImageOriginal string `json:"image_original,omitempty"`
}

// SyncMetadata is the per-record bookkeeping the platform attaches to every
// synced record
type SyncMetadata struct {
	FirstSeenAt    *time.Time `json:"first_seen_at,omitempty"`
	LastModifiedAt *time.Time `json:"last_modified_at,omitempty"`
	DeletedAt      *time.Time `json:"deleted_at"`
	LastAction     string     `json:"last_action,omitempty"`
	Cursor         string     `json:"cursor,omitempty"`
}

// Deleted reports whether the remote platform marked this record as deleted
func (r *SyncRecord) Deleted() bool {
	return r.Metadata.DeletedAt != nil
}

// FullName derives the display full name: the profile display name when set,
// otherwise the top-level name.
func (r *SyncRecord) FullName() string {
	if r.Profile.DisplayName != "" {
		return r.Profile.DisplayName
	}
	return r.Name
}

// Avatar derives the avatar URL, falling back to a placeholder image
func (r *SyncRecord) Avatar() string {
	if r.Profile.ImageOriginal != "" {
		return r.Profile.ImageOriginal
	}
	return DefaultAvatarURL
}
