package domain

import "time"

// StatusActive is the only KeyRecord status that allows verification.
const StatusActive = "active"

// TimestampLayout is ISO-8601 UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// KeyRecord describes an issued access key. It is maintained out-of-band and
// is read-only here.
type KeyRecord struct {
	Status string `json:"status"`
	Token  string `json:"token"`
}

// KeyRecordFromDocument decodes the fields it needs from a raw document.
// Fields of an unexpected type decode as empty.
func KeyRecordFromDocument(doc Document) KeyRecord {
	status, _ := doc["status"].(string)
	token, _ := doc["token"].(string)
	return KeyRecord{Status: status, Token: token}
}

// ValidationRecord records that UserID passed verification with Key.
// Stored at validated_users/{userId}; a non-empty Key marks the user verified.
type ValidationRecord struct {
	UserID     string `json:"userId"`
	Key        string `json:"key"`
	Token      string `json:"token"`
	VerifiedAt string `json:"verifiedAt"`
	IP         string `json:"ip,omitempty"`
	UserAgent  string `json:"userAgent,omitempty"`
}

// Document returns the patch body for the record. Empty optional fields are
// left out so they never overwrite values already stored.
func (r ValidationRecord) Document() Document {
	doc := Document{
		"userId":     r.UserID,
		"key":        r.Key,
		"token":      r.Token,
		"verifiedAt": r.VerifiedAt,
	}
	if r.IP != "" {
		doc["ip"] = r.IP
	}
	if r.UserAgent != "" {
		doc["userAgent"] = r.UserAgent
	}
	return doc
}

type VerificationRequest struct {
	UserID  string `json:"userId" validate:"required,dockey"`
	UserKey string `json:"userKey" validate:"required,dockey"`
	Token   string `json:"token" validate:"required"`
}

// RequestMeta is caller context captured verbatim into the ValidationRecord.
type RequestMeta struct {
	IP        string
	UserAgent string
}

type VerificationOutcome struct {
	Success    bool   `json:"success"`
	UserID     string `json:"userId"`
	Key        string `json:"key"`
	VerifiedAt string `json:"verifiedAt"`
	Message    string `json:"message,omitempty"`
}

// UserStatus is the result of a status query. User is the raw stored record, or nil.
type UserStatus struct {
	Verified bool     `json:"verified"`
	User     Document `json:"user"`
}

// ValidationEvent is published after a ValidationRecord has been persisted.
type ValidationEvent struct {
	EventID    string    `json:"event_id"`
	UserID     string    `json:"user_id"`
	Key        string    `json:"key"`
	VerifiedAt string    `json:"verified_at"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventTypeUserValidated tags ValidationEvents on the wire.
const EventTypeUserValidated = "user.validated"
