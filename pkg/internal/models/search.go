package models

type SearchLog struct {
	BaseModel

	Query    string `json:"query" gorm:"uniqueIndex;size:255"`
	HitCount int    `json:"hit_count"`
}
