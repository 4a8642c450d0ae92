// Package preview classifies attached files and builds the data shown in a
// file preview panel.
package preview

import (
	"path"
	"slices"
	"strings"
)

type Kind string

const (
	KindImage  Kind = "image"
	KindPDF    Kind = "pdf"
	KindText   Kind = "text"
	KindOffice Kind = "office"
	KindOther  Kind = "other"
)

var (
	imageExts  = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".svg"}
	textExts   = []string{".txt", ".md", ".csv", ".json", ".xml", ".html", ".css", ".js"}
	officeExts = []string{".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx"}

	officeTypes = []string{
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.ms-powerpoint",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	}
)

// Classify maps a MIME type and file name to a preview kind.
// Rules apply in order: image, pdf, text, office, other.
func Classify(mimeType, fileName string) Kind {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	ext := extOf(fileName)

	switch {
	case strings.HasPrefix(mt, "image/") || slices.Contains(imageExts, ext):
		return KindImage
	case mt == "application/pdf" || ext == ".pdf":
		return KindPDF
	case strings.HasPrefix(mt, "text/") || slices.Contains(textExts, ext):
		return KindText
	case slices.Contains(officeTypes, mt) || slices.Contains(officeExts, ext):
		return KindOffice
	default:
		return KindOther
	}
}

// Icon returns the glyph shown next to a file name.
func Icon(mimeType, fileName string) string {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	switch ext := extOf(fileName); {
	case strings.HasPrefix(mt, "image/"):
		return "🖼️"
	case mt == "application/pdf":
		return "📄"
	case ext == ".doc" || ext == ".docx":
		return "📄"
	case ext == ".xls" || ext == ".xlsx":
		return "📈"
	case ext == ".ppt" || ext == ".pptx":
		return "📊"
	default:
		return "📁"
	}
}

// TypeName returns a human label for the file type.
func TypeName(mimeType, fileName string) string {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	switch ext := extOf(fileName); {
	case strings.HasPrefix(mt, "image/"):
		return "Image"
	case mt == "application/pdf":
		return "PDF Document"
	case ext == ".doc" || ext == ".docx":
		return "Word Document"
	case ext == ".xls" || ext == ".xlsx":
		return "Excel Spreadsheet"
	case ext == ".ppt" || ext == ".pptx":
		return "PowerPoint Presentation"
	}
	if strings.TrimSpace(mimeType) != "" {
		return strings.TrimSpace(mimeType)
	}
	return "Unknown"
}

func extOf(fileName string) string {
	return strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
}
