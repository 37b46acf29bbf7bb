package entity

// Asset is an uploaded file held in memory before it is sent to the asset host.
type Asset struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// StoredAsset describes a file after the asset host accepted it.
// Handle is the provider identifier needed to delete it later.
type StoredAsset struct {
	URL    string
	Handle string
	Bytes  int64
	Kind   string
	Format string
}

// AssetKind classifies a MIME type as image, video or document.
func AssetKind(contentType string) string {
	switch {
	case len(contentType) >= 6 && contentType[:6] == "image/":
		return "image"
	case len(contentType) >= 6 && contentType[:6] == "video/":
		return "video"
	default:
		return "document"
	}
}
