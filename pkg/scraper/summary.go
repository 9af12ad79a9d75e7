package scraper

import (
	"fmt"
	"time"
)

// Summary is the outcome of one run
type Summary struct {
	StartedAt  time.Time
	FinishedAt time.Time

	LoggedIn        bool
	Campaigns       int
	CampaignsFailed int

	PostsSaved   int
	PostsSkipped int
	PostsFailed  int

	FilesDownloaded int
	FilesFailed     int

	// FilesWritten counts every file put on disk: post bodies, downloads
	// and metadata sidecars.
	FilesWritten int
	BytesWritten int64

	// Err is set when the run stopped before processing campaigns: a failed
	// login, a failed campaign listing or cancellation.
	Err error
}

// Duration is the wall time of the run
func (s *Summary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// HasFailures reports whether anything was skipped because of an error
func (s *Summary) HasFailures() bool {
	return s.Err != nil || s.CampaignsFailed > 0 || s.PostsFailed > 0 || s.FilesFailed > 0
}

func (s *Summary) String() string {
	if s.Err != nil {
		return fmt.Sprintf("run aborted: %v", s.Err)
	}
	return fmt.Sprintf("%d campaigns (%d failed), %d posts saved, %d skipped, %d failed, %d files downloaded, %d failed",
		s.Campaigns, s.CampaignsFailed, s.PostsSaved, s.PostsSkipped, s.PostsFailed, s.FilesDownloaded, s.FilesFailed)
}
