package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aidaily-app/aidaily/internal/models"
)

// fileFeed reads news items from a JSON export file. It is the simplest
// services.FeedSource: an array of news item objects in the wire format.
type fileFeed struct {
	path string
}

func (f *fileFeed) Fetch(_ context.Context) ([]models.NewsItem, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	var items []models.NewsItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", f.path, err)
	}
	return items, nil
}

func (a *App) Import(ctx context.Context, path string) error {
	n, err := a.library.ImportFrom(ctx, &fileFeed{path: path})
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d news items.\n", n)
	return nil
}
