package relay

const (
	stageDownload = "downloading"
	stageUpload   = "uploading"
)
