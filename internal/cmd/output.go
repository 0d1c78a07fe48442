package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	"golang.org/x/term"

	"github.com/dshills/evan/internal/scenario"
	"github.com/dshills/evan/internal/trace"
)

// useColor decides whether output to w is colorized.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printer writes scenario reports in the configured format.
type printer struct {
	w      io.Writer
	json   bool
	indent bool
	styles trace.Styles
}

func (a *app) newPrinter(w io.Writer) *printer {
	return &printer{
		w:      w,
		json:   a.cfg.Output.Format == "json",
		indent: a.cfg.Output.Pretty,
		styles: trace.NewStyles(w, useColor(a.cfg.Output.Color, w)),
	}
}

// Report writes one scenario report.
func (p *printer) Report(r *scenario.Report) error {
	if p.json {
		doc, err := reportJSON(r)
		if err != nil {
			return err
		}
		return p.writeJSON(doc)
	}
	return p.reportText(r)
}

// Error writes a scenario that could not be loaded or wired.
func (p *printer) Error(file string, err error) error {
	if p.json {
		doc, _ := sjson.SetBytes([]byte(`{}`), "source", file)
		doc, _ = sjson.SetBytes(doc, "passed", false)
		doc, _ = sjson.SetBytes(doc, "error", err.Error())
		return p.writeJSON(doc)
	}
	_, werr := fmt.Fprintf(p.w, "%s %s\n  %v\n", p.styles.Fail.Render("ERROR"), file, err)
	return werr
}

func (p *printer) writeJSON(doc []byte) error {
	if p.indent {
		doc = pretty.Pretty(doc)
	} else {
		doc = append(pretty.Ugly(doc), '\n')
	}
	_, err := p.w.Write(doc)
	return err
}

func (p *printer) reportText(r *scenario.Report) error {
	status := p.styles.Pass.Render("PASS")
	if r.Failed() {
		status = p.styles.Fail.Render("FAIL")
	}
	header := fmt.Sprintf("%s %s", status, p.styles.Label.Render(r.Scenario))
	if r.Source != "" {
		header += p.styles.Dim.Render(" (" + r.Source + ")")
	}
	if _, err := fmt.Fprintln(p.w, header); err != nil {
		return err
	}

	for _, step := range r.Steps {
		result := p.styles.Pass.Render("ok")
		if !step.Passed {
			result = p.styles.Fail.Render("FAIL") + " " + step.Failure
		}
		line := fmt.Sprintf("  step %d %s  %s", step.Index, step.Step, result)
		if step.Step.Op == scenario.OpOff {
			line += p.styles.Dim.Render(fmt.Sprintf("  removed=%d", step.Removed))
		}
		if _, err := fmt.Fprintln(p.w, line); err != nil {
			return err
		}
		if err := p.styles.WriteEntries(indent{w: p.w, prefix: "    "}, step.Entries); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(p.w, "  %d steps, %d failed, %d handlers invoked\n",
		len(r.Steps), len(r.Failures()), r.Stats.HandlersInvoked)
	return err
}

// indent prefixes every write with a fixed string. Callers write whole
// lines.
type indent struct {
	w      io.Writer
	prefix string
}

func (i indent) Write(b []byte) (int, error) {
	if _, err := io.WriteString(i.w, i.prefix); err != nil {
		return 0, err
	}
	return i.w.Write(b)
}

func reportJSON(r *scenario.Report) ([]byte, error) {
	doc := []byte(`{}`)
	set := func(key string, value any) {
		if doc == nil {
			return
		}
		var err error
		if doc, err = sjson.SetBytes(doc, key, value); err != nil {
			doc = nil
		}
	}

	set("scenario", r.Scenario)
	if r.Source != "" {
		set("source", r.Source)
	}
	set("passed", !r.Failed())
	set("stats.triggers", r.Stats.Triggers)
	set("stats.broadcasts", r.Stats.Broadcasts)
	set("stats.handlers_invoked", r.Stats.HandlersInvoked)
	set("stats.handler_errors", r.Stats.HandlerErrors)

	if doc != nil {
		doc, _ = sjson.SetRawBytes(doc, "steps", []byte(`[]`))
	}
	for i, step := range r.Steps {
		base := "steps." + strconv.Itoa(i)
		set(base+".index", step.Index)
		set(base+".op", string(step.Step.Op))
		set(base+".event", step.Step.Event)
		set(base+".path", step.Step.Path)
		set(base+".passed", step.Passed)
		set(base+".handled", step.Handled)
		set(base+".default_prevented", step.DefaultPrevented)
		if step.Step.Op == scenario.OpOff {
			set(base+".removed", step.Removed)
		}
		if step.Failure != "" {
			set(base+".failure", step.Failure)
		}
		if step.Err != nil {
			set(base+".error", step.Err.Error())
		}
		if doc == nil {
			break
		}
		var err error
		if doc, err = trace.AppendJSON(doc, base+".trace", step.Entries); err != nil {
			return nil, err
		}
	}

	if doc == nil {
		return nil, fmt.Errorf("encoding report for %q", r.Scenario)
	}
	return doc, nil
}
