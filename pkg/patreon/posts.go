package patreon

import (
	"context"
	"fmt"

	"patreonscraper/pkg/errors"
)

// FetchCampaignContent walks every posts page of a campaign and merges the
// data and included resources. Any failure discards the pages already read.
func (c *Client) FetchCampaignContent(ctx context.Context, campaignID string) (*CampaignContent, error) {
	content := &CampaignContent{}
	cursor := ""

	for {
		var doc Document
		if err := c.getJSON(ctx, PostsEndpoint, PostsParams(campaignID, cursor), &doc); err != nil {
			c.logger.WithError(err).WarnWithFields("failed to fetch posts page", map[string]interface{}{
				"campaign_id": campaignID,
				"page":        content.Pages + 1,
			})
			return nil, err
		}

		content.Pages++
		content.Data = append(content.Data, doc.Data...)
		content.Included = append(content.Included, doc.Included...)

		c.logger.DebugWithFields("fetched posts page", map[string]interface{}{
			"campaign_id": campaignID,
			"page":        content.Pages,
			"posts":       len(doc.Data),
		})

		next := doc.Meta.NextCursor()
		if next == "" {
			break
		}
		if next == cursor {
			return nil, errors.New(errors.ErrorTypePagination,
				fmt.Sprintf("campaign %s: cursor %q repeated on page %d", campaignID, next, content.Pages))
		}
		if c.maxPages > 0 && content.Pages >= c.maxPages {
			return nil, errors.New(errors.ErrorTypePagination,
				fmt.Sprintf("campaign %s: more than %d pages", campaignID, c.maxPages))
		}
		cursor = next
	}

	c.logger.InfoWithFields("fetched campaign posts", map[string]interface{}{
		"campaign_id": campaignID,
		"posts":       len(content.Data),
		"pages":       content.Pages,
	})
	return content, nil
}
