package dto

type UploadFileResData struct {
	Id       int64  `json:"id"`
	Filename string `json:"filename"`
	Url      string `json:"url"`
	Size     int64  `json:"size"`
}
