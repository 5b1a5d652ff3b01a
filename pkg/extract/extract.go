// Package extract implements the sandbox-parsing contract the preview
// generator depends on: boilerplate-free webpage excerpts, page
// titles, markdown conversion for prompts, and excerpt language
// detection. Nothing here evaluates scripts; readability and goquery
// operate on markup only and tolerate malformed input.
package extract

import (
	"fmt"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"
)

// Extractor is the narrow contract consumed by the preview generator.
// PDFText has no production implementation in this repository; the
// default extractor reports it unavailable so PDF previews degrade
// silently.
type Extractor interface {
	WebpageExcerpt(rawHTML, pageURL string) (string, error)
	PageTitle(rawHTML string) string
	Markdown(rawHTML string) (string, error)
	DetectLanguage(text string) string
	PDFText(data []byte) (text string, pageCount int, err error)
}

// Readability is the default Extractor, built on go-readability with a
// goquery fallback for pages readability cannot distill.
type Readability struct {
	converter *md.Converter
	detector  lingua.LanguageDetector
}

// New builds the default extractor. The language detector is restricted
// to a small set so the model stays cheap to load.
func New() *Readability {
	languages := []lingua.Language{
		lingua.English, lingua.German, lingua.French, lingua.Spanish,
		lingua.Portuguese, lingua.Italian, lingua.Dutch, lingua.Russian,
		lingua.Japanese, lingua.Chinese,
	}
	return &Readability{
		converter: md.NewConverter("", true, nil),
		detector:  lingua.NewLanguageDetectorBuilder().FromLanguages(languages...).Build(),
	}
}

// WebpageExcerpt distills the main content of raw markup into plain
// text. Malformed markup yields whatever could be salvaged, not an
// error; the error return covers only unusable input.
func (r *Readability) WebpageExcerpt(rawHTML, pageURL string) (string, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		parsedURL = &url.URL{}
	}

	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(rawHTML), parsedURL)
	if err == nil {
		if excerpt := normalizeText(article.TextContent); excerpt != "" {
			return excerpt, nil
		}
	}

	// Readability found nothing article-shaped; scrape paragraphs.
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("failed to parse markup: %w", err)
	}

	var sb strings.Builder
	doc.Find("p,h1,h2,h3,li").Each(func(i int, s *goquery.Selection) {
		text := normalizeText(s.Text())
		if text != "" {
			sb.WriteString(text)
			sb.WriteString(" ")
		}
	})
	return strings.TrimSpace(sb.String()), nil
}

// PageTitle returns the document title, preferring og:title over the
// <title> element.
func (r *Readability) PageTitle(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if title := normalizeText(og); title != "" {
			return title
		}
	}
	return normalizeText(doc.Find("title").First().Text())
}

// Markdown converts raw markup to markdown for prompt construction.
func (r *Readability) Markdown(rawHTML string) (string, error) {
	markdown, err := r.converter.ConvertString(rawHTML)
	if err != nil {
		return "", fmt.Errorf("failed to convert markup: %w", err)
	}
	return markdown, nil
}

// DetectLanguage returns the ISO 639-1 code for text, or "" when the
// detector is not confident.
func (r *Readability) DetectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	language, ok := r.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(language.IsoCode639_1().String())
}

// PDFText is not implemented by the default extractor; PDF preview
// fields stay empty unless a real PDF collaborator is wired in.
func (r *Readability) PDFText(data []byte) (string, int, error) {
	return "", 0, fmt.Errorf("pdf text extraction not available")
}

// normalizeText collapses a block of text onto one line, dropping
// blank lines and edge whitespace.
func normalizeText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			b.WriteString(line)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String())
}
