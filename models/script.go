package models

import "time"

// Script is the persisted result of one generation run: the narration text
// produced by the model plus the locator of the staged source document.
type Script struct {
	ID          string    `json:"id"`
	PDFFilePath string    `json:"pdfFilePath"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
