package preview

import (
	"unicode/utf8"

	"weekboard/internal/model"

	"github.com/dustin/go-humanize"
)

const TextPreviewFailed = "Text file preview failed"

// Preview is everything a renderer needs to show one file.
type Preview struct {
	File     model.File
	Kind     Kind
	Icon     string
	TypeName string
	Size     int64
	HumanSz  string

	// Text holds the decoded body of a text file.
	Text string
	// Failure is set when the file could not be decoded for display.
	Failure string
	// DownloadOnly is set when the only affordance is a download.
	DownloadOnly bool
	// Message is the explanation shown next to the download affordance.
	Message string
}

// Build classifies f and decodes whatever its kind needs.
func Build(f model.File) Preview {
	p := Preview{
		File:     f,
		Kind:     Classify(f.Type, f.Name),
		Icon:     Icon(f.Type, f.Name),
		TypeName: TypeName(f.Type, f.Name),
	}

	_, body, err := DecodeDataURL(f.Data)
	if err == nil {
		p.Size = int64(len(body))
	} else {
		p.Size = int64(len(f.Data))
	}
	p.HumanSz = humanize.IBytes(uint64(p.Size))

	switch p.Kind {
	case KindText:
		if err != nil || !utf8.Valid(body) {
			p.Failure = TextPreviewFailed
			p.DownloadOnly = true
			p.Message = "Click download to view the file"
			return p
		}
		p.Text = string(body)
	case KindOffice:
		p.DownloadOnly = true
		p.Message = "Office documents require download to view properly."
	case KindOther:
		p.DownloadOnly = true
		p.Message = "Preview not available for this file type. Click download to view the file."
	}
	return p
}
