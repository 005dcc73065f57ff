package types

import "context"

// ChatCompleter drafts and optimizes narration scripts with an LLM.
type ChatCompleter interface {
	GenerateScript(ctx context.Context, inspiration, style string, totalDuration, segmentDuration int, model string) (string, error)
	OptimizeScript(ctx context.Context, scriptContent, creativeDescription, model string) (string, error)
}

type ImageGenerationRequest struct {
	Prompt            string
	Model             string
	AspectRatio       string
	Quality           string
	ReferenceImageUrl string
}

// ImageGenerator submits a text-to-image task and blocks until the remote
// task reaches a terminal state, returning the provider's temporary URL.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ImageGenerationRequest) (string, error)
}

type VideoGenerationRequest struct {
	Model         string
	Prompt        string
	FirstFrameUrl string
	LastFrameUrl  string
	AspectRatio   string
	Duration      float64
}

// VideoGenerator submits a first/last-frame conditioned video task and blocks
// until the remote task reaches a terminal state, returning the temporary URL.
type VideoGenerator interface {
	GenerateVideo(ctx context.Context, req VideoGenerationRequest) (string, error)
}

type UploadResult struct {
	ObjectKey string
	Url       string
	Size      int64
}

// ObjectStore is the durable storage boundary: provider URLs are temporary
// and every generated asset is re-uploaded here.
type ObjectStore interface {
	Upload(ctx context.Context, data []byte, filename, category, contentType string) (*UploadResult, error)
	UploadFromUrl(ctx context.Context, url, filename, category string) (*UploadResult, error)
	Download(ctx context.Context, url string) ([]byte, error)
}
