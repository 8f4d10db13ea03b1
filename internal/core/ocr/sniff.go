package ocr

import (
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
)

type docKind int

const (
	kindUnsupported docKind = iota
	kindPDF
	kindDOCX
	kindMarkdown
	kindText
	kindHTML
	kindOffice // other formats docconv understands
	kindImage
)

const (
	mimePDF      = "application/pdf"
	mimeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeMarkdown = "text/markdown"
	mimeText     = "text/plain"
	mimeHTML     = "text/html"
)

var extMimeTypes = map[string]string{
	".pdf":      mimePDF,
	".docx":     mimeDOCX,
	".md":       mimeMarkdown,
	".markdown": mimeMarkdown,
	".txt":      mimeText,
	".csv":      mimeText,
	".html":     mimeHTML,
	".htm":      mimeHTML,
	".doc":      "application/msword",
	".rtf":      "application/rtf",
	".odt":      "application/vnd.oasis.opendocument.text",
	".pages":    "application/vnd.apple.pages",
	".png":      "image/png",
	".jpg":      "image/jpeg",
	".jpeg":     "image/jpeg",
	".tif":      "image/tiff",
	".tiff":     "image/tiff",
	".gif":      "image/gif",
	".webp":     "image/webp",
	".bmp":      "image/bmp",
}

// ResolveMimeType picks the most specific type among the declared type, the file
// extension of the source name or URL, and the content itself.
func ResolveMimeType(src core.Source) string {
	declared := baseType(src.MimeType)
	if declared != "" && declared != "application/octet-stream" && declared != "binary/octet-stream" {
		if declared != "application/zip" && declared != mimeText {
			return declared
		}
	}
	for _, name := range []string{src.Name, src.URL} {
		if name == "" {
			continue
		}
		if i := strings.IndexAny(name, "?#"); i >= 0 {
			name = name[:i]
		}
		if t, ok := extMimeTypes[strings.ToLower(path.Ext(name))]; ok {
			return t
		}
	}
	if declared != "" && declared != "application/octet-stream" && declared != "binary/octet-stream" {
		return declared
	}
	if len(src.Data) == 0 {
		return ""
	}
	return baseType(http.DetectContentType(src.Data))
}

func baseType(t string) string {
	if t == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(t)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(t))
	}
	return mt
}

func kindOf(mimeType string) docKind {
	switch {
	case mimeType == mimePDF:
		return kindPDF
	case mimeType == mimeDOCX:
		return kindDOCX
	case mimeType == mimeMarkdown || mimeType == "text/x-markdown":
		return kindMarkdown
	case mimeType == mimeText:
		return kindText
	case mimeType == mimeHTML:
		return kindHTML
	case mimeType == "application/msword", mimeType == "application/rtf", mimeType == "text/rtf",
		mimeType == "application/vnd.oasis.opendocument.text", mimeType == "application/vnd.apple.pages",
		mimeType == "application/xml", mimeType == "text/xml":
		return kindOffice
	case strings.HasPrefix(mimeType, "image/"):
		return kindImage
	}
	return kindUnsupported
}
