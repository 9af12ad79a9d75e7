package metadata

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"patreonscraper/pkg/models"
)

// Supported sidecar formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// maxExcerptLength bounds the plain text excerpt stored with a post
const maxExcerptLength = 280

// PostMetadata is the sidecar written next to a saved post
type PostMetadata struct {
	// Core identifiers
	ID         string `json:"id" yaml:"id"`
	CampaignID string `json:"campaign_id" yaml:"campaign_id"`
	Creator    string `json:"creator" yaml:"creator"`

	// Content
	Title    string   `json:"title" yaml:"title"`
	Date     string   `json:"date,omitempty" yaml:"date,omitempty"`
	Tags     []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Excerpt  string   `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
	ImageURL string   `json:"image_url,omitempty" yaml:"image_url,omitempty"`

	// Images embedded in the post body, in document order
	Images []string `json:"images,omitempty" yaml:"images,omitempty"`

	// Files attached to the post
	Files []models.Attachment `json:"files,omitempty" yaml:"files,omitempty"`

	DownloadedAt time.Time `json:"downloaded_at" yaml:"downloaded_at"`
}

// FromPost builds the sidecar for a parsed post
func FromPost(post *models.Post, campaign models.Campaign, excerpt string) *PostMetadata {
	return &PostMetadata{
		ID:           post.ID,
		CampaignID:   campaign.ID,
		Creator:      campaign.CreatorName,
		Title:        post.Title,
		Date:         post.Date,
		Tags:         post.Tags,
		Excerpt:      truncate(excerpt, maxExcerptLength),
		ImageURL:     post.ImageURL,
		Files:        post.Files,
		DownloadedAt: time.Now().UTC(),
	}
}

// FileName returns the sidecar file name for format
func FileName(format string) string {
	return "post." + normalizeFormat(format)
}

// Encode serializes the metadata in the requested format
func (m *PostMetadata) Encode(format string) ([]byte, error) {
	switch normalizeFormat(format) {
	case FormatJSON:
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported metadata format: %s", format)
	}
}

func normalizeFormat(format string) string {
	switch strings.ToLower(format) {
	case "yml", FormatYAML:
		return FormatYAML
	case "", FormatJSON:
		return FormatJSON
	default:
		return strings.ToLower(format)
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
