package models

import "gorm.io/gorm"

// APIUsageLog records one text-completion call: who asked, what it cost,
// whether it worked. Written by the OpenAI service as a side effect.
type APIUsageLog struct {
	gorm.Model
	UserID       uint   `gorm:"index"`
	RequestType  string `gorm:"type:varchar(50)"`
	ModelUsed    string `gorm:"type:varchar(50)"`
	TokensUsed   int
	Cost         float64
	ResponseTime float64 // seconds
	Success      bool
	ErrorMessage string
}
