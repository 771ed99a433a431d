package virtual

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// translations of the built-in page text, keyed by the English text.
var translations = map[language.Tag]map[string]string{
	language.Vietnamese: {
		"Edit this page":              "Sửa trang này",
		"Last updated on %s":          "Cập nhật lần cuối vào %s",
		"Last updated by %s":          "Cập nhật lần cuối bởi %s",
		"Last updated on %s by %s":    "Cập nhật lần cuối vào %s bởi %s",
		"Previous":                    "Trước",
		"Next":                        "Sau",
		"Read more":                   "Đọc thêm",
		"%d min read":                 "%d phút đọc",
		"Tags":                        "Thẻ",
		"Tags:":                       "Thẻ:",
		"Newer posts":                 "Bài mới hơn",
		"Older posts":                 "Bài cũ hơn",
		"Newer post":                  "Bài mới hơn",
		"Older post":                  "Bài cũ hơn",
		"Archive":                     "Lưu trữ",
		"On this page":                "Trên trang này",
		"Search":                      "Tìm kiếm",
		"Search the site":             "Tìm kiếm trên trang",
		"No results":                  "Không có kết quả",
		"%d posts tagged with \"%s\"": "%d bài viết được gắn thẻ \"%s\"",
		"Page Not Found":              "Không tìm thấy trang",
		"We could not find what you were looking for.": "Chúng tôi không tìm thấy những gì bạn đang tìm kiếm.",
		"Toggle dark mode": "Chuyển chế độ tối",
		"Close":            "Đóng",
		"Languages":        "Ngôn ngữ",
	},
}

// uiCatalog holds the translations. English needs no entries since keys are English.
var uiCatalog = func() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range translations {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
	return b
}()

// newPrinter returns a printer for the page text of a locale.
func newPrinter(code string) *message.Printer {
	tag, err := language.Parse(code)
	if err != nil {
		tag = language.English
	}
	tags := append([]language.Tag{language.English}, uiCatalog.Languages()...)
	_, idx, _ := language.NewMatcher(tags).Match(tag)
	return message.NewPrinter(tags[idx], message.Catalog(uiCatalog))
}
