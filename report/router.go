package report

import (
	"context"
	"fmt"
	"strings"

	"inbound/storage"
)

// FolderRouter picks the folder a report is filed under.
type FolderRouter interface {
	FolderFor(ctx context.Context, reportType, frequency string) (string, error)
}

// ConfigRouter routes by "<type>/<frequency>" keys, then "<type>", both
// matched case-insensitively.
type ConfigRouter struct {
	Folders map[string]string
}

func (c ConfigRouter) FolderFor(_ context.Context, reportType, frequency string) (string, error) {
	keys := []string{reportType}
	if frequency != "" {
		keys = []string{reportType + "/" + frequency, reportType}
	}
	for _, want := range keys {
		for k, folder := range c.Folders {
			if strings.EqualFold(strings.TrimSpace(k), want) && strings.TrimSpace(folder) != "" {
				return storage.Join(folder), nil
			}
		}
	}
	return "", fmt.Errorf("no report folder for %s/%s", reportType, frequency)
}
