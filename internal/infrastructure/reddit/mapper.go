package reddit

import "strings"

// linkKind is the Reddit type prefix for link posts
const linkKind = "t3"

// MapListingTitles extracts post titles from a listing page, skipping non-link
// children and blank titles
func MapListingTitles(listing *Listing) []string {
	if listing == nil {
		return nil
	}

	titles := make([]string, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		if child.Kind != "" && child.Kind != linkKind {
			continue
		}
		title := strings.TrimSpace(child.Data.Title)
		if title == "" {
			continue
		}
		titles = append(titles, title)
	}
	return titles
}
