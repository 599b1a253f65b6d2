package domain

import "time"

// Visibility controls whether a reading is publicly listed.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
)

// ReadingTags are the caller-supplied preference tags. All fields are
// optional; an absent tag stays an explicit empty string and is never
// rendered into the generation prompt.
type ReadingTags struct {
	Category string `json:"category"`
	Persona  string `json:"persona"`
	Mood     string `json:"mood"`
	Question string `json:"question"`
}

// Reading is the durable result of one generation request. Records are
// write-once: created by the pipeline's final persistence step and never
// updated in place.
type Reading struct {
	ID            string      `json:"id"`
	OwnerID       string      `json:"ownerId"`
	Tags          ReadingTags `json:"tags"`
	ImageRef      string      `json:"imageRef"`
	NarrativeText string      `json:"narrativeText"`
	AudioURL      string      `json:"audioUrl,omitempty"`
	Visibility    Visibility  `json:"visibility"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// HasAudio reports whether synthesis and upload both succeeded.
func (r Reading) HasAudio() bool {
	return r.AudioURL != ""
}

// User is the resolved identity of the caller, as reported by the
// identity provider.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}
