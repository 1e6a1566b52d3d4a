package store

import (
	"time"

	"github.com/trendlens/backend/internal/domain"
)

// productRecord is the row layout of the product table
type productRecord struct {
	ID          string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	ProductName string    `gorm:"column:product_name;not null"`
	LastSeen    time.Time `gorm:"column:last_seen;not null"`
	WordCount   int       `gorm:"column:word_count;not null"`

	Description      *string `gorm:"column:description"`
	EmailText        *string `gorm:"column:email_text"`
	SocialMediaPost  *string `gorm:"column:social_media_post"`
	ProductImgPrompt *string `gorm:"column:product_img_prompt"`
	AdvertImgPrompt  *string `gorm:"column:advert_img_prompt"`
	ProductImgURL    *string `gorm:"column:product_img_url"`
	AdvertImgURL     *string `gorm:"column:advert_img_url"`
}

func toRecord(p *domain.StoredProduct) productRecord {
	return productRecord{
		ID:               p.ID,
		ProductName:      p.ProductName,
		LastSeen:         p.LastSeen.UTC(),
		WordCount:        p.WordCount,
		Description:      p.Description,
		EmailText:        p.EmailText,
		SocialMediaPost:  p.SocialMediaPost,
		ProductImgPrompt: p.ProductImgPrompt,
		AdvertImgPrompt:  p.AdvertImgPrompt,
		ProductImgURL:    p.ProductImgURL,
		AdvertImgURL:     p.AdvertImgURL,
	}
}

func (r productRecord) toDomain() domain.StoredProduct {
	return domain.StoredProduct{
		ID:               r.ID,
		ProductName:      r.ProductName,
		LastSeen:         r.LastSeen.UTC(),
		WordCount:        r.WordCount,
		Description:      r.Description,
		EmailText:        r.EmailText,
		SocialMediaPost:  r.SocialMediaPost,
		ProductImgPrompt: r.ProductImgPrompt,
		AdvertImgPrompt:  r.AdvertImgPrompt,
		ProductImgURL:    r.ProductImgURL,
		AdvertImgURL:     r.AdvertImgURL,
	}
}
