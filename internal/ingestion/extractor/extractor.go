package extractor

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/studypath/internal/domain/study"
	"github.com/yungbote/studypath/internal/platform/logger"
)

// Extractor turns uploaded files into plain text. It never fails: a file
// that cannot be parsed yields a tagged placeholder instead.
type Extractor struct {
	Log         *logger.Logger
	Concurrency int
}

func New(log *logger.Logger) *Extractor {
	if log == nil {
		log = logger.Nop()
	}
	return &Extractor{Log: log.With("component", "DocumentExtractor"), Concurrency: 4}
}

func (e *Extractor) Extract(ctx context.Context, doc study.RawDocument) study.ExtractedText {
	format := DetectFormat(doc.FileName, doc.DeclaredFormat, doc.Bytes)
	out := study.ExtractedText{SourceFileName: doc.FileName, Format: format}

	if err := ctx.Err(); err != nil {
		out.Text = fmt.Sprintf("[Extraction Cancelled] %s", doc.FileName)
		return out
	}

	var (
		text string
		err  error
	)
	switch format {
	case study.FormatPDF:
		text, err = extractPDF(doc.Bytes)
	case study.FormatPPTX:
		text, err = extractPPTX(doc.Bytes)
	case study.FormatPPT:
		out.Text = fmt.Sprintf("[PPT Unsupported] %s: Please upload PPTX for best results.", doc.FileName)
		e.Log.Warn("legacy slide format", "file", doc.FileName)
		return out
	case study.FormatDOCX:
		text, err = extractDOCX(doc.Bytes)
	case study.FormatText:
		out.Text = string(doc.Bytes)
		return out
	default:
		out.Text = fmt.Sprintf("[Unsupported Format] %s", doc.FileName)
		e.Log.Warn("unsupported file format", "file", doc.FileName, "bytes", len(doc.Bytes))
		return out
	}
	if err != nil {
		e.Log.Warn("extraction failed", "file", doc.FileName, "format", format, "error", err)
		out.Text = placeholder(format, doc.FileName)
		return out
	}
	out.Text = strings.TrimSpace(text)
	e.Log.Debug("extracted text", "file", doc.FileName, "format", format, "chars", len(out.Text))
	return out
}

// ExtractAll extracts every document, returning results in input order.
func (e *Extractor) ExtractAll(ctx context.Context, docs []study.RawDocument) []study.ExtractedText {
	out := make([]study.ExtractedText, len(docs))
	g := new(errgroup.Group)
	limit := e.Concurrency
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)
	for i := range docs {
		i := i
		g.Go(func() error {
			out[i] = e.Extract(ctx, docs[i])
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func placeholder(format study.FileFormat, name string) string {
	switch format {
	case study.FormatPDF:
		return fmt.Sprintf("[PDF Parsing Failed] %s", name)
	case study.FormatPPTX:
		return fmt.Sprintf("[PPTX Parsing Failed] %s", name)
	case study.FormatDOCX:
		return fmt.Sprintf("[DOCX Parsing Failed] %s", name)
	default:
		return fmt.Sprintf("[Parsing Failed] %s", name)
	}
}

// IsPlaceholder reports whether text is an extraction placeholder.
func IsPlaceholder(text string) bool {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "[") {
		return false
	}
	end := strings.Index(t, "]")
	if end < 0 {
		return false
	}
	tag := t[1:end]
	return strings.HasSuffix(tag, "Parsing Failed") ||
		strings.HasSuffix(tag, "Unsupported") ||
		tag == "Unsupported Format" ||
		tag == "Extraction Cancelled"
}
