package patreon

import (
	"bytes"
	"encoding/json"
)

// Document is a JSON:API response body. Data holds a single resource or a list.
type Document struct {
	Data     ResourceList `json:"data"`
	Included []Resource   `json:"included"`
	Meta     Meta         `json:"meta"`
}

// Resource is a JSON:API resource object
type Resource struct {
	ID            string                  `json:"id"`
	Type          string                  `json:"type"`
	Attributes    json.RawMessage         `json:"attributes,omitempty"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
}

// DecodeAttributes unmarshals the resource attributes into v.
// Missing or null attributes leave v untouched.
func (r *Resource) DecodeAttributes(v interface{}) error {
	if isNull(r.Attributes) {
		return nil
	}
	return json.Unmarshal(r.Attributes, v)
}

// Related returns the identifiers linked under name
func (r *Resource) Related(name string) []Identifier {
	rel, ok := r.Relationships[name]
	if !ok {
		return nil
	}
	return rel.Data
}

// Relationship is a JSON:API relationship object
type Relationship struct {
	Data Linkage `json:"data"`
}

// Identifier is a JSON:API resource identifier
type Identifier struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Linkage is relationship data. It decodes from null, a single identifier or a list.
type Linkage []Identifier

func (l *Linkage) UnmarshalJSON(data []byte) error {
	items, err := oneOrMany[Identifier](data)
	if err != nil {
		return err
	}
	*l = items
	return nil
}

// ResourceList is primary data. It decodes from null, a single resource or a list.
type ResourceList []Resource

func (l *ResourceList) UnmarshalJSON(data []byte) error {
	items, err := oneOrMany[Resource](data)
	if err != nil {
		return err
	}
	*l = items
	return nil
}

// Meta carries pagination information
type Meta struct {
	Pagination Pagination `json:"pagination"`
}

// Pagination is the cursor block of a posts page
type Pagination struct {
	Total   int     `json:"total"`
	Cursors Cursors `json:"cursors"`
}

// Cursors holds the next page cursor; Next is null on the last page
type Cursors struct {
	Next *string `json:"next"`
}

// NextCursor returns the next page cursor or "" when there is none
func (m Meta) NextCursor() string {
	if m.Pagination.Cursors.Next == nil {
		return ""
	}
	return *m.Pagination.Cursors.Next
}

// CampaignContent is every post and included resource of a campaign, merged across pages
type CampaignContent struct {
	Data     []Resource
	Included []Resource
	Pages    int
}

// PostAttributes are the post fields the scraper reads. Every field is optional.
type PostAttributes struct {
	Title              *string    `json:"title"`
	Content            *string    `json:"content"`
	PublishedAt        *string    `json:"published_at"`
	Image              *PostImage `json:"image"`
	MetaImageURL       *string    `json:"meta_image_url"`
	URL                *string    `json:"url"`
	PostType           *string    `json:"post_type"`
	CurrentUserCanView bool       `json:"current_user_can_view"`
}

// PostImage is the cover image block of a post
type PostImage struct {
	LargeURL *string `json:"large_url"`
	URL      *string `json:"url"`
	ThumbURL *string `json:"thumb_url"`
}

// IsEmpty reports whether the image block carries no URLs at all
func (i *PostImage) IsEmpty() bool {
	return i == nil || (i.LargeURL == nil && i.URL == nil && i.ThumbURL == nil)
}

// CampaignAttributes are the campaign fields read by the campaign lister
type CampaignAttributes struct {
	Name *string `json:"name"`
	URL  *string `json:"url"`
}

// AttachmentAttributes are the fields of an included attachment
type AttachmentAttributes struct {
	Name *string `json:"name"`
	URL  *string `json:"url"`
}

// StringValue dereferences s, returning "" for nil
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func isNull(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func oneOrMany[T any](data []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if isNull(trimmed) {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	var item T
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return nil, err
	}
	return []T{item}, nil
}
