package resolver

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// channelIDPattern matches YouTube channel IDs (UC followed by 22 chars).
var channelIDPattern = regexp.MustCompile(`UC[\w-]{22}`)

// channelRef extracts either a handle or a channel ID from a channel URL or
// bare token. Exactly one of the returns is non-empty.
func channelRef(token string) (handle, channelID string) {
	if strings.Contains(token, "/channel/") {
		if id := channelIDPattern.FindString(token); id != "" {
			return "", id
		}
	}
	if channelIDPattern.FindString(token) == token {
		return "", token
	}
	if i := strings.Index(token, "@"); i != -1 {
		h := token[i:]
		h = strings.SplitN(h, "/", 2)[0]
		h = strings.SplitN(h, "?", 2)[0]
		return h, ""
	}
	return "@" + token, ""
}

// fetchAPI lists a channel's short-form uploads through the Data API,
// newest first, up to queue_size.
func (r *Resolver) fetchAPI(ctx context.Context, src APIFetch) ([]string, error) {
	service, err := youtube.NewService(ctx, option.WithAPIKey(src.Key))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	handle, channelID := channelRef(src.Channel)
	lookup := service.Channels.List([]string{"id"})
	if channelID != "" {
		lookup = lookup.Id(channelID)
	} else {
		lookup = lookup.ForHandle(handle)
	}
	channels, err := lookup.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("look up channel %s: %w", src.Channel, err)
	}
	if len(channels.Items) == 0 {
		return nil, fmt.Errorf("channel not found: %s", src.Channel)
	}

	search := service.Search.List([]string{"id"}).
		ChannelId(channels.Items[0].Id).
		Type("video").
		VideoDuration("short").
		Order("date").
		MaxResults(int64(r.cfg.QueueSize))
	result, err := search.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list shorts for %s: %w", src.Channel, err)
	}

	ids := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, item.Id.VideoId)
		}
	}
	return ids, nil
}
