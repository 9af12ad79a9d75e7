package scraper

import (
	"context"
	"io"

	"patreonscraper/pkg/models"
	"patreonscraper/pkg/patreon"
)

// PatreonClient is the session the scraper drives
type PatreonClient interface {
	Login(ctx context.Context, email, password string) error
	ListCampaigns(ctx context.Context) ([]models.Campaign, error)
	FetchCampaignContent(ctx context.Context, campaignID string) (*patreon.CampaignContent, error)
	Download(ctx context.Context, fileURL string) (io.ReadCloser, error)
}

// ProgressReporter receives run events as they happen
type ProgressReporter interface {
	CampaignStarted(campaign models.Campaign, index, total int)
	CampaignFinished(campaign models.Campaign, err error)
	PostSaved(post *models.Post, folder string)
	PostSkipped(postID string)
	PostFailed(postID string, err error)
	FileDownloaded(name string, size int64)
	FileFailed(name string, err error)
}

type nopProgress struct{}

func (nopProgress) CampaignStarted(models.Campaign, int, int) {}
func (nopProgress) CampaignFinished(models.Campaign, error)   {}
func (nopProgress) PostSaved(*models.Post, string)            {}
func (nopProgress) PostSkipped(string)                        {}
func (nopProgress) PostFailed(string, error)                  {}
func (nopProgress) FileDownloaded(string, int64)              {}
func (nopProgress) FileFailed(string, error)                  {}
