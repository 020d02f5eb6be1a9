package chat

import (
	"fmt"
	"time"

	"inkchat/internal/store"
)

// Profile is a user directory entry. The document id equals the account id.
type Profile struct {
	ID        string
	UserID    string
	Name      string
	Email     string
	CreatedAt time.Time
}

func DecodeProfile(doc store.Document) (Profile, error) {
	d := newDecoder(doc)
	p := Profile{
		ID:        doc.ID,
		UserID:    d.string_("userId", true),
		Name:      d.string_("name", true),
		Email:     d.string_("email", false),
		CreatedAt: d.time_("createdAt", true),
	}
	if err := d.err(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func EncodeProfileFields(userID, name, email string, createdAt time.Time) map[string]any {
	return map[string]any{
		"userId":    userID,
		"name":      name,
		"email":     email,
		"createdAt": createdAt.UTC().Format(time.RFC3339Nano),
	}
}

// PlaceholderName synthesizes a display name from an id prefix, used when
// no profile document exists for a participant.
func PlaceholderName(userID string) string {
	prefix := userID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return fmt.Sprintf("User %s", prefix)
}
