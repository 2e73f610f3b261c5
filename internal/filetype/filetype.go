// Package filetype decides which uploads the portal accepts and how they are classified.
package filetype

import (
	"mime"
	"path/filepath"
	"strings"

	"portal/internal/model"
)

// Generic is the media type clients send when they do not know better.
const Generic = "application/octet-stream"

var allowed = map[string]model.Classification{
	"application/pdf":               model.ClassDocument,
	"application/msword":            model.ClassDocument,
	"application/vnd.ms-powerpoint": model.ClassPresentation,

	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   model.ClassDocument,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": model.ClassPresentation,

	"image/jpeg":      model.ClassImage,
	"image/png":       model.ClassImage,
	"image/gif":       model.ClassImage,
	"image/webp":      model.ClassImage,
	"video/mp4":       model.ClassVideo,
	"video/quicktime": model.ClassVideo,
	"text/plain":      model.ClassOther,
}

// byExtension covers containers that content sniffing reports generically (zip, OLE).
var byExtension = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".txt":  "text/plain",
}

// Normalize lower-cases a media type and strips its parameters.
func Normalize(mediaType string) string {
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(mediaType); err == nil {
		return mt
	}
	return strings.ToLower(mediaType)
}

// IsGeneric reports whether the declared type carries no information.
func IsGeneric(mediaType string) bool {
	mt := Normalize(mediaType)
	return mt == "" || mt == Generic
}

// Allowed reports whether the media type is accepted for upload.
func Allowed(mediaType string) bool {
	_, ok := allowed[Normalize(mediaType)]
	return ok
}

// Classify maps a media type to its coarse bucket. Unknown types are ClassOther.
func Classify(mediaType string) model.Classification {
	if c, ok := allowed[Normalize(mediaType)]; ok {
		return c
	}
	mt := Normalize(mediaType)
	switch {
	case strings.HasPrefix(mt, "image/"):
		return model.ClassImage
	case strings.HasPrefix(mt, "video/"):
		return model.ClassVideo
	}
	return model.ClassOther
}

// FromExtension returns the allowed media type registered for the filename's extension.
func FromExtension(filename string) (string, bool) {
	mt, ok := byExtension[strings.ToLower(filepath.Ext(filename))]
	return mt, ok
}
