package archive

import (
	"encoding/json"
	"time"

	"azure-watch/updates/internal/feed"
)

// Row represents a row in the updates table.
type Row struct {
	ID          int64     `db:"id" json:"id"`
	Source      string    `db:"source" json:"source"`
	Link        string    `db:"link" json:"link"`
	Title       string    `db:"title" json:"title"`
	Status      string    `db:"status" json:"status"`
	Tags        []byte    `db:"tags" json:"-"` // JSON-marshaled tag list
	Description string    `db:"description" json:"description,omitempty"`
	PublishedAt time.Time `db:"published_at" json:"published_at"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// MarshalJSON flattens the stored tag list back into the API shape.
func (r Row) MarshalJSON() ([]byte, error) {
	type alias Row
	var tags []string
	if len(r.Tags) > 0 {
		_ = json.Unmarshal(r.Tags, &tags)
	}
	return json.Marshal(struct {
		alias
		TagList []string `json:"tags,omitempty"`
	}{alias: alias(r), TagList: tags})
}

// newRow converts an extracted record for storage under the given
// source name.
func newRow(sourceName string, u feed.Update) (Row, error) {
	tags := []byte("[]")
	if len(u.Tags) > 0 {
		var err error
		tags, err = json.Marshal(u.Tags)
		if err != nil {
			return Row{}, err
		}
	}
	return Row{
		Source:      sourceName,
		Link:        u.Link,
		Title:       u.Title,
		Status:      u.Status,
		Tags:        tags,
		Description: u.Description,
		PublishedAt: u.PublishedAt,
	}, nil
}
