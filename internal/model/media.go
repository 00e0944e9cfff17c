package model

import "time"

// Media is the metadata row for one stored image. ImagePath is the public locator
// (/uploads/{name}); the file itself lives in object storage under {name}.
type Media struct {
	ID          string    `json:"id"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	FileSize    int64     `json:"fileSize"`
	ImagePath   string    `json:"imagePath"`
	ProductID   *string   `json:"productId"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
}
