package metadata

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"patreonscraper/pkg/models"
)

func samplePost() *models.Post {
	return &models.Post{
		ID:       "42",
		Title:    "Hello",
		Date:     "2023-05-01",
		ImageURL: "https://img/large.jpg",
		Tags:     []string{"art"},
		Files:    []models.Attachment{{Name: "pack.zip", URL: "https://cdn/pack.zip"}},
	}
}

func TestFromPost(t *testing.T) {
	campaign := models.Campaign{CreatorName: "Jane Doe", ID: "100"}
	meta := FromPost(samplePost(), campaign, strings.Repeat("x", 400))

	assert.Equal(t, "42", meta.ID)
	assert.Equal(t, "100", meta.CampaignID)
	assert.Equal(t, "Jane Doe", meta.Creator)
	assert.Len(t, []rune(meta.Excerpt), maxExcerptLength)
	assert.True(t, strings.HasSuffix(meta.Excerpt, "..."))
	assert.False(t, meta.DownloadedAt.IsZero())
}

func TestEncode(t *testing.T) {
	for _, format := range []string{"json", "yaml", "yml"} {
		t.Run(format, func(t *testing.T) {
			meta := FromPost(samplePost(), models.Campaign{CreatorName: "Jane", ID: "100"}, "short")
			meta.Images = []string{"https://img/inline.png"}

			data, err := meta.Encode(format)
			require.NoError(t, err)

			var decoded PostMetadata
			if format == "json" {
				require.NoError(t, json.Unmarshal(data, &decoded))
			} else {
				require.NoError(t, yaml.Unmarshal(data, &decoded))
			}
			assert.Equal(t, meta.ID, decoded.ID)
			assert.Equal(t, meta.Tags, decoded.Tags)
			assert.Equal(t, meta.Files, decoded.Files)
			assert.Equal(t, meta.Images, decoded.Images)
			assert.Equal(t, "short", decoded.Excerpt)
		})
	}
}

func TestEncodeUnsupported(t *testing.T) {
	_, err := FromPost(samplePost(), models.Campaign{}, "").Encode("xml")
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "post.json", FileName(""))
	assert.Equal(t, "post.yaml", FileName("YML"))
}
