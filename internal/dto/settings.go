package dto

// UpdateTopStarRequest edits one golden-list entry.
type UpdateTopStarRequest struct {
	Name  string `json:"name"`
	Index string `json:"index"`
	Score string `json:"score"`
}

// AssetUploadResponse reports where an uploaded image landed.
type AssetUploadResponse struct {
	Kind  string `json:"kind"`
	Field string `json:"field"`
	Bytes int64  `json:"bytes"`
	MIME  string `json:"mime"`
}
