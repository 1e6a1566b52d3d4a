package domain

import "time"

// StoredProduct is a catalog record for a product name seen in the trend corpus.
// The enrichment fields are owned by downstream processes and stay nil until they fill them.
type StoredProduct struct {
	ID          string    `json:"id"`
	ProductName string    `json:"product_name"`
	LastSeen    time.Time `json:"last_seen"`
	WordCount   int       `json:"word_count"`

	Description      *string `json:"description"`
	EmailText        *string `json:"email_text"`
	SocialMediaPost  *string `json:"social_media_post"`
	ProductImgPrompt *string `json:"product_img_prompt"`
	AdvertImgPrompt  *string `json:"advert_img_prompt"`
	ProductImgURL    *string `json:"product_img_url"`
	AdvertImgURL     *string `json:"advert_img_url"`
}

// SyncReport summarizes the writes made by one store synchronization
type SyncReport struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// RunReport summarizes one pipeline run
type RunReport struct {
	StartedAt     time.Time   `json:"started_at"`
	FinishedAt    time.Time   `json:"finished_at"`
	TitlesFetched int         `json:"titles_fetched"`
	FailedSources []string    `json:"failed_sources,omitempty"`
	Candidates    []Candidate `json:"candidates"`
	Validated     []Candidate `json:"validated"`
	Sync          SyncReport  `json:"sync"`
}
