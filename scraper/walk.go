package scraper

import "shortloop/models"

// CollectVideoIDs walks the decoded payload depth-first and returns the video
// ID of every shorts renderer entry in document order. IDs are deduplicated
// keeping the first occurrence; limit bounds the number of unique IDs
// collected (0 means unbounded).
//
// A shorts renderer entry is any object with a reelWatchEndpoint member whose
// object carries a string videoId.
func CollectVideoIDs(root *Value, limit int) []string {
	seen := make(map[string]struct{})
	var ids []string

	var walk func(v *Value)
	walk = func(v *Value) {
		if v == nil || (limit > 0 && len(ids) >= limit) {
			return
		}
		switch v.Kind {
		case KindObject:
			if endpoint, ok := v.Field("reelWatchEndpoint"); ok {
				if id, ok := endpoint.Field("videoId"); ok && id.Kind == KindString && models.ValidID(id.Str) {
					if _, dup := seen[id.Str]; !dup {
						seen[id.Str] = struct{}{}
						ids = append(ids, id.Str)
						if limit > 0 && len(ids) >= limit {
							return
						}
					}
				}
			}
			for _, m := range v.Members {
				walk(m.Value)
			}
		case KindArray:
			for _, e := range v.Array {
				walk(e)
			}
		}
	}
	walk(root)

	return ids
}
