package extractor

import (
	"archive/zip"
	"bytes"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/yungbote/studypath/internal/domain/study"
)

const (
	mimePDF  = "application/pdf"
	mimePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimePPT  = "application/vnd.ms-powerpoint"
	mimeZip  = "application/zip"
)

// DetectFormat trusts an explicit declared format, then the file name, and
// only sniffs the bytes when neither is conclusive.
func DetectFormat(name string, declared study.FileFormat, data []byte) study.FileFormat {
	if declared != "" && declared != study.FormatUnknown {
		return declared
	}
	if f := study.FormatFromName(name); f != study.FormatUnknown {
		return f
	}
	return sniff(data)
}

func sniff(data []byte) study.FileFormat {
	if len(data) == 0 {
		return study.FormatUnknown
	}
	mt := mimetype.Detect(data)
	switch {
	case mt.Is(mimePDF):
		return study.FormatPDF
	case mt.Is(mimePPTX):
		return study.FormatPPTX
	case mt.Is(mimeDOCX):
		return study.FormatDOCX
	case mt.Is(mimePPT):
		return study.FormatPPT
	case mt.Is(mimeZip):
		return openXMLKind(data)
	}
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return study.FormatText
		}
	}
	return study.FormatUnknown
}

// openXMLKind looks at archive entries when the sniffer only saw a zip.
func openXMLKind(data []byte) study.FileFormat {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return study.FormatUnknown
	}
	hasWord, hasPpt := false, false
	for _, f := range zr.File {
		switch {
		case strings.HasPrefix(f.Name, "word/"):
			hasWord = true
		case strings.HasPrefix(f.Name, "ppt/"):
			hasPpt = true
		}
	}
	switch {
	case hasPpt && !hasWord:
		return study.FormatPPTX
	case hasWord && !hasPpt:
		return study.FormatDOCX
	default:
		return study.FormatUnknown
	}
}
