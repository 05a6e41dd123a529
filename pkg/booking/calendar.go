package booking

import (
	"strings"

	"golang.org/x/net/html"
)

// The scheduling site's calendar marks a bookable day as a td carrying the
// availability class and the date in a data attribute.
const (
	availableClass = "dot--grey"
	dateAttr       = "data-date"
)

// AvailableDates parses the calendar widget's HTML and returns the dates of
// all bookable cells in document order.
func AvailableDates(calendarHTML string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(calendarHTML))
	if err != nil {
		return nil, err
	}

	var dates []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "td" && isAvailableCell(n) {
			if date := attr(n, dateAttr); date != "" {
				dates = append(dates, date)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return dates, nil
}

// ChooseDate returns the first available date that is in the preferred set,
// or "" when none matches.
func ChooseDate(available []string, preferred map[string]struct{}) string {
	for _, date := range available {
		if _, ok := preferred[date]; ok {
			return date
		}
	}
	return ""
}

func isAvailableCell(n *html.Node) bool {
	for _, class := range strings.Fields(attr(n, "class")) {
		if class == availableClass {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
