package models

// Campaign is a creator campaign the current user is subscribed to
type Campaign struct {
	CreatorName string `json:"creator_name" yaml:"creator_name"`
	ID          string `json:"id" yaml:"id"`
}

// Attachment is a file attached to a post
type Attachment struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// Post is a post after parsing. Absent optional fields are left at their zero value.
type Post struct {
	ID       string       `json:"id" yaml:"id"`
	Title    string       `json:"title" yaml:"title"`
	Date     string       `json:"date" yaml:"date"`
	ImageURL string       `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	Content  string       `json:"-" yaml:"-"`
	Tags     []string     `json:"tags" yaml:"tags"`
	Files    []Attachment `json:"files" yaml:"files"`
}

// HasContent reports whether the post carries an HTML body
func (p *Post) HasContent() bool {
	return p.Content != ""
}

// HasImage reports whether the post has a cover image
func (p *Post) HasImage() bool {
	return p.ImageURL != ""
}
