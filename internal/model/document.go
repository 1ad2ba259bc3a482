package model

import "time"

// Document is an uploaded product document. The pair (title, doc_type) is
// unique; re-uploading under the same pair replaces the document and all of
// its chunks.
type Document struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:256;not null;uniqueIndex:idx_title_doctype" json:"title"`
	DocType    string    `gorm:"size:64;not null;uniqueIndex:idx_title_doctype" json:"doc_type"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}
