package service

import (
	"html"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

type ITextService interface {
	CleanDescription(input string) string
}

var (
	tagsRe      = regexp.MustCompile(`<[^>]*>`)
	blockTagsRe = regexp.MustCompile(`(?i)<\s*(br|/p|/div|/li|/h[1-6])\s*/?>`)
	spacesRe    = regexp.MustCompile(`[ \t\f\v]+`)
	newlinesRe  = regexp.MustCompile(`\s*\n\s*`)
)

type TextService struct{}

func NewTextService() *TextService {
	return &TextService{}
}

func (ts *TextService) RemoveTags(input string) string {
	return html.UnescapeString(tagsRe.ReplaceAllString(input, ""))
}

// CollapseSpaces сжимает пробелы внутри строк и пустые строки между ними.
func (ts *TextService) CollapseSpaces(input string) string {
	out := spacesRe.ReplaceAllString(input, " ")
	out = newlinesRe.ReplaceAllString(out, "\n")
	return strings.TrimSpace(out)
}

// CleanDescription превращает HTML-описание в простой текст: блочные теги становятся переводами строк,
// остальные теги удаляются, сущности раскрываются, результат приводится к NFC.
func (ts *TextService) CleanDescription(input string) string {
	if input == "" {
		return ""
	}
	text := blockTagsRe.ReplaceAllString(input, "\n")
	text = ts.RemoveTags(text)
	text = strings.ReplaceAll(text, "\u00a0", " ")
	return norm.NFC.String(ts.CollapseSpaces(text))
}
