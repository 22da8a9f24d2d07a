package decode

import (
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// HTMLToText converts an HTML body to markdown. Links come out as
// [text](url) and images as ![alt](src); CleanText flattens both.
func HTMLToText(html string) (string, error) {
	return htmltomarkdown.ConvertString(html)
}
