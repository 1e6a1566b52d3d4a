package reddit

// Listing is the envelope Reddit wraps around paginated results
type Listing struct {
	Kind string      `json:"kind"`
	Data ListingData `json:"data"`
}

// ListingData holds one page of children and the cursor for the next page
type ListingData struct {
	After    string  `json:"after"`
	Before   string  `json:"before"`
	Dist     int     `json:"dist"`
	Children []Child `json:"children"`
}

// Child is a single listing entry; for subreddit listings Kind is "t3" (link)
type Child struct {
	Kind string `json:"kind"`
	Data Post   `json:"data"`
}

// Post carries the link fields the trend pipeline reads
type Post struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Title     string  `json:"title"`
	Subreddit string  `json:"subreddit"`
	Stickied  bool    `json:"stickied"`
	Score     int     `json:"score"`
	Created   float64 `json:"created_utc"`
}
