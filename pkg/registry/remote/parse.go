package remote

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tmls/pkg/registry"
	"github.com/walteh/tmls/pkg/tagmatch"
)

var ErrNoTitle = errors.Base("page has no h1 title")

type sectionKind int

const (
	sectionUnknown sectionKind = iota
	sectionCompat
	sectionProps
	sectionEvents
	sectionSlots
	sectionRefs
	sectionDemo
)

func classify(heading string) sectionKind {
	h := strings.ToLower(heading)
	switch {
	case strings.Contains(h, "兼容") || strings.Contains(h, "compat"):
		return sectionCompat
	case strings.Contains(h, "事件") || strings.Contains(h, "event"):
		return sectionEvents
	case strings.Contains(h, "插槽") || strings.Contains(h, "slot"):
		return sectionSlots
	case strings.Contains(h, "ref"):
		return sectionRefs
	case strings.Contains(h, "参数") || strings.Contains(h, "属性") || strings.Contains(h, "props"):
		return sectionProps
	case strings.Contains(h, "示例") || strings.Contains(h, "demo"):
		return sectionDemo
	}
	return sectionUnknown
}

// Parse reads a documentation page into a descriptor. The page is expected to
// carry an h1 title, a lead paragraph and h2/h3 sections each holding an
// optional paragraph and table. Missing cells decode as empty strings.
func Parse(name string, doc *goquery.Document) (*registry.Descriptor, error) {
	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		return nil, errors.WithStack(ErrNoTitle)
	}

	d := &registry.Descriptor{
		Name:        name,
		Title:       title,
		Description: strings.TrimSpace(doc.Find("h1").First().NextAllFiltered("p").First().Text()),
	}

	doc.Find("h2, h3").Each(func(_ int, h *goquery.Selection) {
		heading := strings.TrimSpace(h.Text())
		body := h.NextUntil("h1, h2, h3")
		desc := strings.TrimSpace(body.Filter("p").First().Text())
		table := body.Filter("table").First()
		code := strings.TrimSpace(body.Filter("pre").AddSelection(body.Find("pre")).First().Text())

		switch classify(heading) {
		case sectionCompat:
			d.Compat = parseCompat(table)
		case sectionProps:
			d.PropGroups = append(d.PropGroups, registry.PropGroup{
				Title:       heading,
				Description: desc,
				For:         groupFor(name, heading),
				Rows:        parseProps(table),
			})
		case sectionEvents:
			d.Events = &registry.Section{Description: desc, Rows: parseRows(table)}
		case sectionSlots:
			d.Slots = &registry.Section{Description: desc, Rows: parseRows(table)}
		case sectionRefs:
			d.Refs = &registry.Section{Description: desc, Rows: parseRows(table), Demo: code}
		case sectionDemo:
			d.Demo = code
		}
	})

	return d, nil
}

// groupFor files "GridItem 参数" under grid-item when the page is grid.
func groupFor(name, heading string) string {
	word := strings.FieldsFunc(heading, func(r rune) bool {
		return r > unicode.MaxASCII || unicode.IsSpace(r)
	})
	if len(word) == 0 {
		return ""
	}
	member := tagmatch.KebabCase(word[0])
	if member == name || strings.EqualFold(member, "props") {
		return ""
	}
	return member
}

func cells(tr *goquery.Selection) []*goquery.Selection {
	var out []*goquery.Selection
	tr.Find("td").Each(func(_ int, td *goquery.Selection) {
		out = append(out, td)
	})
	return out
}

func cellText(cs []*goquery.Selection, i int) string {
	if i >= len(cs) {
		return ""
	}
	return strings.TrimSpace(cs[i].Text())
}

func bodyRows(table *goquery.Selection) *goquery.Selection {
	rows := table.Find("tbody tr")
	if rows.Length() == 0 {
		rows = table.Find("tr").Slice(1, goquery.ToEnd)
	}
	return rows
}

func parseProps(table *goquery.Selection) []registry.Prop {
	if table.Length() == 0 {
		return nil
	}
	var out []registry.Prop
	bodyRows(table).Each(func(_ int, tr *goquery.Selection) {
		cs := cells(tr)
		if len(cs) == 0 {
			return
		}
		version := strings.TrimSpace(cs[0].Find(".badge, sup").Text())
		nameCell := cs[0].Clone()
		nameCell.Find(".badge, sup").Remove()
		out = append(out, registry.Prop{
			Name:        strings.TrimSpace(nameCell.Text()),
			Type:        cellText(cs, 1),
			Default:     cellText(cs, 2),
			Description: cellText(cs, 3),
			Version:     version,
		})
	})
	return out
}

func parseRows(table *goquery.Selection) []registry.Row {
	if table.Length() == 0 {
		return nil
	}
	var out []registry.Row
	bodyRows(table).Each(func(_ int, tr *goquery.Selection) {
		cs := cells(tr)
		if len(cs) == 0 {
			return
		}
		out = append(out, registry.Row{
			Name:        cellText(cs, 0),
			Params:      cellText(cs, 1),
			Callback:    cellText(cs, 2),
			Description: cellText(cs, 3),
		})
	})
	return out
}

func parseCompat(table *goquery.Selection) registry.Compatibility {
	var values []registry.Support
	first := bodyRows(table).FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Find("td").Length() > 0
	}).First()
	first.Find("td").Each(func(_ int, td *goquery.Selection) {
		values = append(values, parseSupport(strings.TrimSpace(td.Text())))
	})
	for len(values) < len(registry.Platforms) {
		values = append(values, registry.Support{})
	}
	return registry.Compatibility{
		AppVue:   values[0],
		AppNvue:  values[1],
		H5:       values[2],
		MpWeixin: values[3],
		MpAlipay: values[4],
	}
}

func parseSupport(v string) registry.Support {
	switch strings.ToLower(v) {
	case "✅", "√", "yes", "true", "支持":
		return registry.Support{Supported: true}
	case "", "❌", "×", "x", "no", "false", "不支持":
		return registry.Support{}
	}
	return registry.Support{Supported: true, Note: v}
}
