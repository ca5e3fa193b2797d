package dto

// MediaUploadResp 附件上传结果
type MediaUploadResp struct {
	URL      string `json:"url"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}
