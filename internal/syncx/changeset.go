package syncx

import (
	"time"

	"github.com/aidaily-app/aidaily/internal/models"
)

// ChangeSet is the set of records, across all synced kinds, whose updated_at
// exceeds some watermark. It includes tombstones. The JSON shape doubles as
// the body of POST /sync/upload and the payload of GET /sync/download.
type ChangeSet struct {
	News     []models.NewsItem `json:"news"`
	Concepts []models.Concept  `json:"concepts"`
	Phrases  []models.Phrase   `json:"phrases"`
	Settings []models.Setting  `json:"settings"`
}

// Total returns the number of records across all kinds.
func (c *ChangeSet) Total() int {
	return len(c.News) + len(c.Concepts) + len(c.Phrases) + len(c.Settings)
}

// Empty reports whether the change set carries no records.
func (c *ChangeSet) Empty() bool {
	return c.Total() == 0
}

// UploadResponse is returned by POST /sync/upload. Upload is one-directional:
// the server reports counts, not merged records.
type UploadResponse struct {
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// DownloadResponse is returned by GET /sync/download. ServerTime is the
// server's clock captured before the change queries ran; the client uses it
// as its next watermark so clock skew between devices cannot lose updates.
type DownloadResponse struct {
	ChangeSet
	ServerTime time.Time `json:"server_time"`
}
