// Package hover renders component documentation for the custom tags on a line.
package hover

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tmls/pkg/registry"
)

var tagName = regexp.MustCompile(`tm-([\w-]+)`)

// Names returns the custom tag names on line with the tm- prefix removed,
// deduplicated in first-seen order.
func Names(line string) []string {
	matches := tagName.FindAllStringSubmatch(line, -1)
	return lo.Uniq(lo.Map(matches, func(m []string, _ int) string {
		return m[1]
	}))
}

// Resolver turns a hovered line into a markdown document.
type Resolver struct {
	source registry.DescriptorSource
}

func NewResolver(source registry.DescriptorSource) *Resolver {
	return &Resolver{source: source}
}

// Render describes the first custom tag on line. The name is looked up as a
// descriptor key as is; aliases are not applied. It returns false when the
// line has no custom tag or the tag is not documented.
func (me *Resolver) Render(ctx context.Context, line string) (string, bool) {
	names := Names(line)
	if len(names) == 0 {
		return "", false
	}

	// only the first tag on a line is described
	name := names[0]

	d, err := me.source.Describe(ctx, name)
	if err != nil {
		if !errors.Is(err, registry.ErrUnknownComponent) {
			zerolog.Ctx(ctx).Warn().Err(err).Str("tag", name).Msg("describing component for hover")
		}
		return "", false
	}

	return Markdown(d), true
}

var platformHeaders = []string{"App-vue", "App-nvue", "H5", "微信小程序", "支付宝小程序"}

// Markdown renders d. Each optional block is skipped on its own when the
// field it needs is empty.
func Markdown(d *registry.Descriptor) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## %s\n\n", d.Title)

	sb.WriteString(d.Description)
	if d.DocURL != "" {
		fmt.Fprintf(&sb, " [查看文档](%s)", d.DocURL)
	}
	sb.WriteString("\n\n")

	if d.Demo != "" {
		writeDemo(&sb, "示例", d.Demo)
	}

	sb.WriteString("### 兼容性\n\n")
	writeRow(&sb, platformHeaders...)
	writeRule(&sb, len(platformHeaders))
	writeRow(&sb, lo.Map(d.Compat.Columns(), func(s registry.Support, _ int) string {
		return s.String()
	})...)
	sb.WriteString("\n")

	for _, g := range d.PropGroups {
		fmt.Fprintf(&sb, "### %s\n\n", g.Title)
		if g.Description != "" {
			sb.WriteString(g.Description)
			sb.WriteString("\n\n")
		}
		writeRow(&sb, "属性名", "类型", "默认值", "说明")
		writeRule(&sb, 4)
		for _, p := range g.Rows {
			name := p.Name
			if p.Version != "" {
				name += fmt.Sprintf(" <sup>%s+</sup>", p.Version)
			}
			writeRow(&sb, name, p.Type, "`"+p.Default+"`", p.Description)
		}
		sb.WriteString("\n")
	}

	writeSection(&sb, "事件", []string{"事件名", "参数", "返回值", "说明"}, d.Events)
	writeSection(&sb, "插槽", []string{"插槽名", "数据", "返回值", "说明"}, d.Slots)
	writeSection(&sb, "Ref 方法", []string{"方法名", "参数", "返回值", "说明"}, d.Refs)

	if d.Refs != nil && d.Refs.Demo != "" {
		writeDemo(&sb, "Ref 示例", d.Refs.Demo)
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// writeSection always writes the heading. A nil section renders like an empty
// one.
func writeSection(sb *strings.Builder, title string, headers []string, s *registry.Section) {
	fmt.Fprintf(sb, "### %s\n\n", title)
	if s == nil {
		return
	}
	if s.Description != "" {
		sb.WriteString(s.Description)
		sb.WriteString("\n\n")
	}
	if len(s.Rows) == 0 {
		return
	}
	writeRow(sb, headers...)
	writeRule(sb, len(headers))
	for _, r := range s.Rows {
		writeRow(sb, r.Name, r.Params, r.Callback, r.Description)
	}
	sb.WriteString("\n")
}

func writeDemo(sb *strings.Builder, summary, code string) {
	fmt.Fprintf(sb, "<details>\n<summary>%s</summary>\n\n```vue\n%s\n```\n\n</details>\n\n", summary, strings.TrimRight(code, "\n"))
}

func writeRow(sb *strings.Builder, cells ...string) {
	sb.WriteString("|")
	for _, c := range cells {
		sb.WriteString(" ")
		sb.WriteString(strings.ReplaceAll(c, "|", `\|`))
		sb.WriteString(" |")
	}
	sb.WriteString("\n")
}

func writeRule(sb *strings.Builder, n int) {
	sb.WriteString("|")
	sb.WriteString(strings.Repeat(" --- |", n))
	sb.WriteString("\n")
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderHTML converts a rendered hover document to HTML for previews
// outside the editor.
func RenderHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", errors.Errorf("converting hover markdown: %w", err)
	}
	return buf.String(), nil
}
