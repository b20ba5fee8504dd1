package study

import (
	"path/filepath"
	"strings"
	"time"
)

type FileFormat string

const (
	FormatPDF     FileFormat = "pdf"
	FormatPPTX    FileFormat = "pptx"
	FormatPPT     FileFormat = "ppt"
	FormatDOCX    FileFormat = "docx"
	FormatText    FileFormat = "text"
	FormatUnknown FileFormat = "unknown"
)

// FormatFromName maps a file extension to a FileFormat.
func FormatFromName(name string) FileFormat {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "pdf":
		return FormatPDF
	case "pptx":
		return FormatPPTX
	case "ppt":
		return FormatPPT
	case "docx", "doc":
		return FormatDOCX
	case "txt", "md", "text":
		return FormatText
	default:
		return FormatUnknown
	}
}

// RawDocument is consumed once by the extractor.
type RawDocument struct {
	FileName       string
	Bytes          []byte
	DeclaredFormat FileFormat
}

type ExtractedText struct {
	SourceFileName string     `json:"sourceFileName"`
	Format         FileFormat `json:"format"`
	Text           string     `json:"text"`
}

// Corpus joins extracted texts in upload order with blank lines.
func Corpus(texts []ExtractedText) string {
	parts := make([]string, 0, len(texts))
	for _, t := range texts {
		parts = append(parts, t.Text)
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

type FileKind string

const (
	FileKindSlide     FileKind = "slide"
	FileKindPastPaper FileKind = "pastPaper"
)

// ParseFileKind accepts the handful of spellings clients send.
func ParseFileKind(raw string) (FileKind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "slide", "slides", "":
		return FileKindSlide, true
	case "pastpaper", "past_paper", "pqp", "paper":
		return FileKindPastPaper, true
	default:
		return "", false
	}
}

type UploadRecord struct {
	FileName   string    `json:"fileName"`
	FileKind   FileKind  `json:"fileKind"`
	FileRef    string    `json:"fileRef"`
	UploadedAt time.Time `json:"uploadedAt"`
}
