package patreon

import (
	"context"

	"patreonscraper/pkg/models"
)

// ListCampaigns returns the campaigns the logged in user pledges to.
// Included records missing a name or id are skipped. No pledges yields an
// empty slice and a nil error.
func (c *Client) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	var doc Document
	if err := c.getJSON(ctx, CurrentUserEndpoint, CurrentUserParams(), &doc); err != nil {
		c.logger.WithError(err).Error("failed to list campaigns")
		return nil, err
	}

	campaigns := make([]models.Campaign, 0)
	for i := range doc.Included {
		res := &doc.Included[i]
		if res.Type != "campaign" || res.ID == "" {
			continue
		}

		var attrs CampaignAttributes
		if err := res.DecodeAttributes(&attrs); err != nil || attrs.Name == nil {
			continue
		}

		campaigns = append(campaigns, models.Campaign{
			CreatorName: *attrs.Name,
			ID:          res.ID,
		})
	}

	c.logger.DebugWithFields("listed campaigns", map[string]interface{}{
		"count": len(campaigns),
	})
	return campaigns, nil
}
