package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"patreonscraper/pkg/models"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
	progressWidth = 20
)

// StatusTracker prints one line per campaign event and keeps running totals
type StatusTracker struct {
	mu sync.Mutex

	campaignIndex int
	campaignTotal int
	campaignPosts int
	PostsSaved    int
	PostsSkipped  int
	PostsFailed   int
	FilesSaved    int
	FilesFailed   int
	BytesSaved    int64
	StartTime     time.Time
	verbose       bool
}

// NewStatusTracker creates a new status tracker. Verbose trackers also print skipped posts.
func NewStatusTracker(verbose bool) *StatusTracker {
	return &StatusTracker{
		StartTime: time.Now(),
		verbose:   verbose,
	}
}

// CampaignStarted announces the next campaign
func (st *StatusTracker) CampaignStarted(campaign models.Campaign, index, total int) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.campaignIndex = index
	st.campaignTotal = total
	st.campaignPosts = 0

	fmt.Fprintf(Out, "\n%s %s %s\n",
		Magenta("[CAMPAIGN]"),
		Yellow(campaign.CreatorName),
		Dim(fmt.Sprintf("(%s) %s", campaign.ID, st.campaignProgress())))
}

// CampaignFinished reports how the campaign ended
func (st *StatusTracker) CampaignFinished(campaign models.Campaign, err error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if err != nil {
		fmt.Fprintf(Out, "%s %s: %v\n", Red("[FAILED]"), campaign.CreatorName, err)
		return
	}
	fmt.Fprintf(Out, "%s %s: %d posts saved\n", Green("[DONE]"), campaign.CreatorName, st.campaignPosts)
}

// PostSaved records a saved post
func (st *StatusTracker) PostSaved(post *models.Post, folder string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.PostsSaved++
	st.campaignPosts++
	fmt.Fprintf(Out, "  %s %s %s\n", Green("[SAVED]"), post.ID, Dim(post.Title))
}

// PostSkipped records a post the user cannot view
func (st *StatusTracker) PostSkipped(postID string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.PostsSkipped++
	if st.verbose {
		fmt.Fprintf(Out, "  %s %s\n", Dim("[LOCKED]"), postID)
	}
}

// PostFailed records a post that could not be parsed or saved
func (st *StatusTracker) PostFailed(postID string, err error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.PostsFailed++
	fmt.Fprintf(Out, "  %s %s: %v\n", Red("[ERROR]"), postID, err)
}

// FileDownloaded records a downloaded attachment or cover image
func (st *StatusTracker) FileDownloaded(name string, size int64) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.FilesSaved++
	st.BytesSaved += size
}

// FileFailed records a download that was skipped after an error
func (st *StatusTracker) FileFailed(name string, err error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.FilesFailed++
	fmt.Fprintf(Out, "    %s %s: %v\n", render(warningStyle, "[SKIPPED]"), name, err)
}

// GetElapsedTime returns the elapsed time since tracking started
func (st *StatusTracker) GetElapsedTime() time.Duration {
	return time.Since(st.StartTime)
}

// GetPostRate returns the average number of saved posts per minute
func (st *StatusTracker) GetPostRate() float64 {
	st.mu.Lock()
	defer st.mu.Unlock()

	elapsed := st.GetElapsedTime().Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(st.PostsSaved) / elapsed
}

// campaignProgress renders a bar of finished campaigns; callers hold mu
func (st *StatusTracker) campaignProgress() string {
	return ProgressLine(st.campaignIndex-1, st.campaignTotal)
}

// ProgressLine renders "[███░░] done/total"
func ProgressLine(done, total int) string {
	filled := 0
	if total > 0 {
		filled = done * progressWidth / total
	}
	if filled < 0 {
		filled = 0
	}
	if filled > progressWidth {
		filled = progressWidth
	}

	bar := strings.Repeat(ProgressBar, filled) + strings.Repeat(ProgressEmpty, progressWidth-filled)
	return fmt.Sprintf("[%s] %d/%d", bar, done, total)
}

// FormatBytes renders a byte count with a binary unit
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
