package trace

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// RenderJSON renders entries as a JSON document of the form
// {"count":N,"entries":[...]}. With indent set the output is pretty
// printed, otherwise it is compact.
func RenderJSON(entries []Entry, indent bool) ([]byte, error) {
	doc, err := AppendJSON([]byte(`{}`), "", entries)
	if err != nil {
		return nil, err
	}
	if indent {
		return pretty.Pretty(doc), nil
	}
	return pretty.Ugly(doc), nil
}

// AppendJSON writes count and entries into doc under prefix, which may be
// empty for the document root or an sjson path such as "steps.0".
func AppendJSON(doc []byte, prefix string, entries []Entry) ([]byte, error) {
	key := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "." + k
	}

	doc, err := sjson.SetBytes(doc, key("count"), len(entries))
	if err != nil {
		return nil, fmt.Errorf("trace json: %w", err)
	}
	doc, err = sjson.SetRawBytes(doc, key("entries"), []byte(`[]`))
	if err != nil {
		return nil, fmt.Errorf("trace json: %w", err)
	}

	for i, e := range entries {
		base := key("entries." + strconv.Itoa(i))
		fields := []struct {
			name  string
			value any
		}{
			{"step", e.Step},
			{"label", e.Label},
			{"event", e.Event},
			{"current", e.Current},
			{"original", e.Original},
			{"outcome", e.Outcome},
		}
		if e.Broadcast != "" {
			fields = append(fields, struct {
				name  string
				value any
			}{"broadcast", e.Broadcast})
		}
		for _, f := range fields {
			doc, err = sjson.SetBytes(doc, base+"."+f.name, f.value)
			if err != nil {
				return nil, fmt.Errorf("trace json: %w", err)
			}
		}
	}
	return doc, nil
}

// Styles holds the styles used by RenderText.
type Styles struct {
	Step     lipgloss.Style
	Label    lipgloss.Style
	Event    lipgloss.Style
	Path     lipgloss.Style
	Dim      lipgloss.Style
	Continue lipgloss.Style
	Stop     lipgloss.Style
	Error    lipgloss.Style
	Pass     lipgloss.Style
	Fail     lipgloss.Style
}

// NewStyles returns the styles for w. Without color every style renders
// plain text.
func NewStyles(w io.Writer, color bool) Styles {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}

	return Styles{
		Step:     r.NewStyle().Foreground(lipgloss.Color("8")),
		Label:    r.NewStyle().Bold(true),
		Event:    r.NewStyle().Foreground(lipgloss.Color("12")),
		Path:     r.NewStyle().Foreground(lipgloss.Color("14")),
		Dim:      r.NewStyle().Foreground(lipgloss.Color("8")),
		Continue: r.NewStyle().Foreground(lipgloss.Color("10")),
		Stop:     r.NewStyle().Foreground(lipgloss.Color("11")),
		Error:    r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Pass:     r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		Fail:     r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}

// Outcome returns the style for an entry outcome.
func (s Styles) Outcome(outcome string) lipgloss.Style {
	switch outcome {
	case "stop":
		return s.Stop
	case "error":
		return s.Error
	default:
		return s.Continue
	}
}

// RenderText writes one aligned line per entry:
//
//	#0  h1  my-event  a.b  outcome=continue  original=a.b.c
func RenderText(w io.Writer, entries []Entry, color bool) error {
	return NewStyles(w, color).WriteEntries(w, entries)
}

// WriteEntries writes entries as aligned text lines using s.
func (s Styles) WriteEntries(w io.Writer, entries []Entry) error {
	var labelWidth, eventWidth, pathWidth int
	for _, e := range entries {
		labelWidth = max(labelWidth, lipgloss.Width(e.Label))
		eventWidth = max(eventWidth, lipgloss.Width(e.Event))
		pathWidth = max(pathWidth, lipgloss.Width(e.Current))
	}

	for _, e := range entries {
		var sb strings.Builder
		sb.WriteString(s.Step.Render(fmt.Sprintf("#%d", e.Step)))
		sb.WriteString("  ")
		sb.WriteString(s.Label.Width(labelWidth).Render(e.Label))
		sb.WriteString("  ")
		sb.WriteString(s.Event.Width(eventWidth).Render(e.Event))
		sb.WriteString("  ")
		sb.WriteString(s.Path.Width(pathWidth).Render(e.Current))
		sb.WriteString("  ")
		sb.WriteString(s.Outcome(e.Outcome).Render(e.Outcome))
		if e.Original != e.Current {
			sb.WriteString(s.Dim.Render("  original=" + e.Original))
		}
		if e.Broadcast != "" {
			sb.WriteString(s.Dim.Render("  broadcast=" + e.Broadcast))
		}
		sb.WriteString("\n")

		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}
