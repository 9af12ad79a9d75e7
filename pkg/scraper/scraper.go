package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"patreonscraper/pkg/config"
	"patreonscraper/pkg/content"
	"patreonscraper/pkg/errors"
	"patreonscraper/pkg/logger"
	"patreonscraper/pkg/metadata"
	"patreonscraper/pkg/models"
	"patreonscraper/pkg/patreon"
	"patreonscraper/pkg/storage"
)

// postFileName is the file the prettified post body is written to
const postFileName = "post.html"

// Scraper drives a sequential run: login, campaign listing, then per campaign
// one paginated fetch followed by saving every viewable post.
type Scraper struct {
	client   PatreonClient
	storage  *storage.Manager
	config   *config.Config
	logger   logger.Logger
	progress ProgressReporter
	filters  []string
}

// New creates a Scraper with a Patreon session built from cfg
func New(cfg *config.Config, log logger.Logger) (*Scraper, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	client, err := patreon.NewClientFromConfig(cfg, log.WithField("component", "patreon"))
	if err != nil {
		return nil, fmt.Errorf("failed to create Patreon client: %w", err)
	}
	return NewWithClient(cfg, client, log)
}

// NewWithClient creates a Scraper around an existing client
func NewWithClient(cfg *config.Config, client PatreonClient, log logger.Logger) (*Scraper, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	dirPerm, err := config.ParsePermissions(cfg.Storage.DirPermissions)
	if err != nil {
		return nil, fmt.Errorf("invalid directory permissions: %w", err)
	}
	filePerm, err := config.ParsePermissions(cfg.Storage.FilePermissions)
	if err != nil {
		return nil, fmt.Errorf("invalid file permissions: %w", err)
	}

	storageManager, err := storage.NewManager(cfg.Output.BaseDirectory, storage.WithPermissions(dirPerm, filePerm))
	if err != nil {
		return nil, fmt.Errorf("failed to create storage manager: %w", err)
	}

	return &Scraper{
		client:   client,
		storage:  storageManager,
		config:   cfg,
		logger:   log.WithField("component", "scraper"),
		progress: nopProgress{},
	}, nil
}

// SetProgress installs a reporter for run events
func (s *Scraper) SetProgress(p ProgressReporter) {
	if p == nil {
		p = nopProgress{}
	}
	s.progress = p
}

// SetCampaignFilter limits the run to campaigns whose id or creator name
// matches one of filters. An empty list means every campaign.
func (s *Scraper) SetCampaignFilter(filters []string) {
	s.filters = filters
}

// Campaigns logs in and lists the subscribed campaigns without downloading anything
func (s *Scraper) Campaigns(ctx context.Context, email, password string) ([]models.Campaign, error) {
	if err := s.client.Login(ctx, email, password); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return s.client.ListCampaigns(ctx)
}

// Run performs a full scrape. Login, listing and cancellation failures end the
// run early and are reported in Summary.Err; campaign, post and file failures
// are counted and skipped.
func (s *Scraper) Run(ctx context.Context, email, password string) *Summary {
	summary := &Summary{StartedAt: time.Now()}
	defer func() {
		summary.FinishedAt = time.Now()
		summary.FilesWritten = s.storage.GetFilesWritten()
		summary.BytesWritten = s.storage.GetBytesWritten()
	}()

	logger.LogComponentStart(s.logger, "scraper", map[string]interface{}{
		"output_dir":       s.storage.GetOutputDir(),
		"skip_attachments": s.config.Download.SkipAttachments,
		"skip_images":      s.config.Download.SkipImages,
		"save_metadata":    s.config.Storage.SaveMetadata,
	})

	if err := s.client.Login(ctx, email, password); err != nil {
		s.logger.WithError(err).Error("Login failed")
		summary.Err = fmt.Errorf("login failed: %w", err)
		return summary
	}
	summary.LoggedIn = true

	campaigns, err := s.client.ListCampaigns(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list campaigns")
		summary.Err = fmt.Errorf("failed to list campaigns: %w", err)
		return summary
	}

	campaigns = s.filterCampaigns(campaigns)
	if len(campaigns) == 0 {
		s.logger.Warn("No campaigns to process")
		return summary
	}

	for i, campaign := range campaigns {
		if err := ctx.Err(); err != nil {
			summary.Err = err
			return summary
		}

		summary.Campaigns++
		s.progress.CampaignStarted(campaign, i+1, len(campaigns))

		err := s.ProcessCampaign(ctx, campaign, summary)
		s.progress.CampaignFinished(campaign, err)
		if err != nil {
			summary.CampaignsFailed++
			s.logger.WithError(err).WithFields(map[string]interface{}{
				"campaign_id": campaign.ID,
				"creator":     campaign.CreatorName,
			}).Error("Campaign failed")
		}
	}

	s.logger.InfoWithFields("Run completed", map[string]interface{}{
		"campaigns":        summary.Campaigns,
		"posts_saved":      summary.PostsSaved,
		"posts_failed":     summary.PostsFailed,
		"files_downloaded": summary.FilesDownloaded,
		"files_failed":     summary.FilesFailed,
	})
	return summary
}

// ProcessCampaign fetches every post of a campaign and saves the viewable ones.
// Only failures that prevent processing the whole campaign are returned.
func (s *Scraper) ProcessCampaign(ctx context.Context, campaign models.Campaign, summary *Summary) error {
	log := s.logger.WithFields(map[string]interface{}{
		"campaign_id": campaign.ID,
		"creator":     campaign.CreatorName,
	})
	log.Info("Parsing campaign")

	campaignContent, err := s.client.FetchCampaignContent(ctx, campaign.ID)
	if err != nil {
		return fmt.Errorf("failed to retrieve content: %w", err)
	}

	campaignFolder := s.storage.GetOutputDir()
	if s.config.Output.CreateCreatorFolders {
		campaignFolder, err = s.storage.CreateFolder(campaign.CreatorName, "")
		if err != nil {
			return fmt.Errorf("failed to create campaign folder: %w", err)
		}
	}

	attachments := content.BuildAttachmentIndex(campaignContent.Included)
	log.InfoWithFields("Posts found", map[string]interface{}{
		"posts": len(campaignContent.Data),
		"pages": campaignContent.Pages,
	})

	for i := range campaignContent.Data {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw := &campaignContent.Data[i]
		viewable, err := content.IsViewable(raw)
		if err != nil {
			s.postFailed(summary, raw.ID, err)
			continue
		}
		if !viewable {
			summary.PostsSkipped++
			s.progress.PostSkipped(raw.ID)
			continue
		}

		post, err := content.ParsePost(raw, attachments)
		if err != nil {
			s.postFailed(summary, raw.ID, err)
			continue
		}

		folder, err := s.SavePost(ctx, post, campaign, campaignFolder, summary)
		if err != nil {
			s.postFailed(summary, post.ID, err)
			continue
		}

		summary.PostsSaved++
		s.progress.PostSaved(post, folder)
	}

	return nil
}

// SavePost writes one post into its own folder under parent: the prettified
// body, each attachment, the cover image and the optional metadata sidecar.
// Download failures are logged and counted but do not fail the post.
func (s *Scraper) SavePost(ctx context.Context, post *models.Post, campaign models.Campaign, parent string, summary *Summary) (string, error) {
	log := s.logger.WithFields(map[string]interface{}{
		"post_id": post.ID,
		"creator": campaign.CreatorName,
	})

	folder, err := s.storage.CreateFolder(content.FolderName(post), parent)
	if err != nil {
		return "", err
	}
	log.DebugWithFields("Saving post", map[string]interface{}{"folder": folder})

	if post.HasContent() {
		body, err := content.Prettify(post.Content)
		if err != nil {
			return "", err
		}
		if _, err := s.storage.WriteFile(postFileName, folder, []byte(body)); err != nil {
			return "", err
		}
	}

	if !s.config.Download.SkipAttachments {
		for _, file := range post.Files {
			s.downloadFile(ctx, campaign, post, file.Name, file.URL, folder, summary)
		}
	}

	if post.HasImage() && !s.config.Download.SkipImages {
		s.downloadFile(ctx, campaign, post, content.CoverImageName(post), post.ImageURL, folder, summary)
	}

	if s.config.Storage.SaveMetadata {
		if err := s.saveMetadata(post, campaign, folder); err != nil {
			log.WithError(err).Warn("Failed to save metadata")
		}
	}

	return folder, nil
}

// downloadFile streams url into folder; failures are logged, counted and swallowed
func (s *Scraper) downloadFile(ctx context.Context, campaign models.Campaign, post *models.Post, name, url, folder string, summary *Summary) {
	err := s.fetchInto(ctx, name, url, folder)
	logger.LogDownload(s.logger, campaign.CreatorName, post.ID, name, err)

	if err != nil {
		summary.FilesFailed++
		s.progress.FileFailed(name, err)
		return
	}
	summary.FilesDownloaded++
}

func (s *Scraper) fetchInto(ctx context.Context, name, url, folder string) error {
	body, err := s.client.Download(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	before := s.storage.GetBytesWritten()
	if _, err := s.storage.CreateFile(name, folder, body); err != nil {
		return err
	}
	s.progress.FileDownloaded(name, s.storage.GetBytesWritten()-before)
	return nil
}

func (s *Scraper) saveMetadata(post *models.Post, campaign models.Campaign, folder string) error {
	excerpt := ""
	var images []string
	if post.HasContent() {
		if text, err := content.PlainText(post.Content); err == nil {
			excerpt = text
		}
		if sources, err := content.ImageSources(post.Content); err == nil {
			images = sources
		}
	}

	meta := metadata.FromPost(post, campaign, excerpt)
	meta.Images = images

	format := s.config.Storage.MetadataFormat
	data, err := meta.Encode(format)
	if err != nil {
		return errors.Wrap(errors.ErrorTypeProcessing, err, "failed to encode metadata")
	}
	_, err = s.storage.WriteFile(metadata.FileName(format), folder, data)
	return err
}

func (s *Scraper) postFailed(summary *Summary, postID string, err error) {
	summary.PostsFailed++
	s.progress.PostFailed(postID, err)
	s.logger.WithError(err).WithFields(map[string]interface{}{
		"post_id":    postID,
		"error_type": string(errors.TypeOf(err)),
	}).Error("Failed to save post")
}

func (s *Scraper) filterCampaigns(campaigns []models.Campaign) []models.Campaign {
	if len(s.filters) == 0 {
		return campaigns
	}

	var selected []models.Campaign
	for _, campaign := range campaigns {
		for _, filter := range s.filters {
			if filter == campaign.ID || strings.EqualFold(filter, campaign.CreatorName) {
				selected = append(selected, campaign)
				break
			}
		}
	}

	s.logger.DebugWithFields("Applied campaign filter", map[string]interface{}{
		"filters":  s.filters,
		"selected": len(selected),
		"total":    len(campaigns),
	})
	return selected
}
