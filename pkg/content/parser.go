package content

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"patreonscraper/pkg/errors"
	"patreonscraper/pkg/models"
	"patreonscraper/pkg/patreon"
)

// AttachmentIndex maps a post id to the attachments that reference it
type AttachmentIndex map[string][]models.Attachment

// BuildAttachmentIndex groups every included attachment under the post named by
// its relationships.post link. Attachments without an owner or URL are dropped.
func BuildAttachmentIndex(included []patreon.Resource) AttachmentIndex {
	index := make(AttachmentIndex)

	for i := range included {
		res := &included[i]
		if res.Type != "attachment" {
			continue
		}

		owner := res.Related("post")
		if len(owner) == 0 || owner[0].ID == "" {
			continue
		}

		var attrs patreon.AttachmentAttributes
		if err := res.DecodeAttributes(&attrs); err != nil {
			continue
		}
		fileURL := patreon.StringValue(attrs.URL)
		if fileURL == "" {
			continue
		}

		name := patreon.StringValue(attrs.Name)
		if name == "" {
			name = nameFromURL(fileURL, res.ID)
		}

		postID := owner[0].ID
		index[postID] = append(index[postID], models.Attachment{Name: name, URL: fileURL})
	}

	return index
}

// IsViewable reports whether the current user may view the post
func IsViewable(post *patreon.Resource) (bool, error) {
	var attrs struct {
		CurrentUserCanView bool `json:"current_user_can_view"`
	}
	if err := post.DecodeAttributes(&attrs); err != nil {
		return false, errors.Wrap(errors.ErrorTypeProcessing, err, fmt.Sprintf("post %s: invalid attributes", post.ID))
	}
	return attrs.CurrentUserCanView, nil
}

// ParsePost converts a raw post resource into a models.Post. Missing optional
// attributes yield zero values; only a missing id or undecodable attributes fail.
func ParsePost(post *patreon.Resource, attachments AttachmentIndex) (*models.Post, error) {
	if post.ID == "" {
		return nil, errors.New(errors.ErrorTypeProcessing, "post has no id")
	}

	var attrs patreon.PostAttributes
	if err := post.DecodeAttributes(&attrs); err != nil {
		return nil, errors.Wrap(errors.ErrorTypeProcessing, err, fmt.Sprintf("post %s: invalid attributes", post.ID))
	}

	return &models.Post{
		ID:       post.ID,
		Title:    patreon.StringValue(attrs.Title),
		Date:     TruncateDate(patreon.StringValue(attrs.PublishedAt)),
		ImageURL: CoverImageURL(&attrs),
		Content:  patreon.StringValue(attrs.Content),
		Tags:     ExtractTags(post.Related("user_defined_tags")),
		Files:    attachments[post.ID],
	}, nil
}

// ExtractTags returns the text after the last ';' of every tag identifier.
// Identifiers without a ';' or with nothing after it are skipped.
func ExtractTags(ids []patreon.Identifier) []string {
	tags := make([]string, 0, len(ids))
	for _, id := range ids {
		idx := strings.LastIndex(id.ID, ";")
		if idx < 0 || idx == len(id.ID)-1 {
			continue
		}
		tags = append(tags, id.ID[idx+1:])
	}
	return tags
}

// TruncateDate keeps the date part of an ISO-8601 timestamp
func TruncateDate(publishedAt string) string {
	date, _, _ := strings.Cut(publishedAt, "T")
	return date
}

// CoverImageURL prefers the large image rendition and falls back to the meta image
func CoverImageURL(attrs *patreon.PostAttributes) string {
	if !attrs.Image.IsEmpty() {
		return patreon.StringValue(attrs.Image.LargeURL)
	}
	return patreon.StringValue(attrs.MetaImageURL)
}

// FolderName is the unsanitized post folder name "<id> - <tags> - <title> - <date>"
func FolderName(post *models.Post) string {
	return fmt.Sprintf("%s - %s - %s - %s", post.ID, strings.Join(post.Tags, ", "), post.Title, post.Date)
}

// CoverImageName is the unsanitized file name of the post's cover image
func CoverImageName(post *models.Post) string {
	return fmt.Sprintf("%s - %s.jpg", post.ID, post.Title)
}

func nameFromURL(fileURL, fallback string) string {
	u, err := url.Parse(fileURL)
	if err != nil {
		return fallback
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return fallback
	}
	return base
}
