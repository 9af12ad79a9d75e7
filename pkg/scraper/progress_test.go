package scraper

import (
	"context"
	"testing"

	"patreonscraper/pkg/logger"
	"patreonscraper/pkg/models"

	"github.com/stretchr/testify/assert"
)

type recordingProgress struct {
	events []string
}

func (r *recordingProgress) CampaignStarted(c models.Campaign, index, total int) {
	r.events = append(r.events, "campaign:"+c.ID)
}
func (r *recordingProgress) CampaignFinished(c models.Campaign, err error) {
	r.events = append(r.events, "done:"+c.ID)
}
func (r *recordingProgress) PostSaved(p *models.Post, folder string) {
	r.events = append(r.events, "saved:"+p.ID)
}
func (r *recordingProgress) PostSkipped(id string)            { r.events = append(r.events, "skipped:"+id) }
func (r *recordingProgress) PostFailed(id string, _ error)    { r.events = append(r.events, "failed:"+id) }
func (r *recordingProgress) FileDownloaded(n string, _ int64) { r.events = append(r.events, "file:"+n) }
func (r *recordingProgress) FileFailed(n string, _ error) {
	r.events = append(r.events, "filefailed:"+n)
}

func TestProgressEvents(t *testing.T) {
	m := newMockPatreonServer()
	defer m.Close()

	s, err := New(testConfig(t, m), logger.NewTestLogger())
	assert.NoError(t, err)

	progress := &recordingProgress{}
	s.SetProgress(progress)
	s.Run(context.Background(), "fan@example.com", "pw")

	assert.Equal(t, []string{
		"campaign:100",
		"file:pack.zip",
		"saved:42",
		"skipped:43",
		"done:100",
	}, progress.events)
}

func TestRunLogsDownloads(t *testing.T) {
	m := newMockPatreonServer()
	defer m.Close()

	log := logger.NewTestLogger()
	s, err := New(testConfig(t, m), log)
	assert.NoError(t, err)
	s.Run(context.Background(), "fan@example.com", "pw")

	assert.True(t, log.HasMessage("Download completed"))
	assert.True(t, log.HasMessage("Run completed"))
	assert.False(t, log.HasError())
}
