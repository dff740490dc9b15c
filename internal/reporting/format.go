package reporting

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Tag selects the locale used for numbers in reports.
var Tag = language.English

func printer() *message.Printer {
	return message.NewPrinter(Tag)
}
