package render

import (
	"fmt"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// Money formats v with thousands grouping and up to three fraction digits: "$1,000".
func Money(v float64) string {
	return "$" + printer.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

// Percent formats v as given by the server: "20%", "12.5%".
func Percent(v float64) string {
	return Plain(v) + "%"
}

// Plain formats v with the fewest digits needed.
func Plain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RowPercent formats a line-item percentage with two decimals: "12.50%".
func RowPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}
