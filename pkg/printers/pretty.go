package printers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/barswitch/pkg/app"
	"tableflip.dev/barswitch/pkg/tree"
	"tableflip.dev/barswitch/pkg/workspace"
)

type PrettyPrint struct {
	ShowID bool
	// Out defaults to color.Output.
	Out io.Writer
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out != nil {
		return pp.Out
	}
	return color.Output
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int, noun string) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d %s", count, noun)
	if count != 1 {
		_, _ = c.Fprint(pp.out(), "s")
	}
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) none() {
	f := color.New(color.Faint, color.Italic)
	_, _ = f.Fprint(pp.out(), " none\n\n")
}

// Bars prints bars in order with the active one marked.
func (pp *PrettyPrint) Bars(bars ...app.Bar) {
	if len(bars) == 0 {
		pp.none()
		return
	}
	active := color.New(color.FgHiGreen, color.Bold)
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	for i, b := range bars {
		mark, title := " ", b.Title
		if b.Active {
			mark, title = active.Sprint("*"), active.Sprint(b.Title)
		}
		if pp.ShowID {
			tbl.AddRow(mark, fmt.Sprintf("%d", i+1), y.Sprint(b.ID), title)
		} else {
			tbl.AddRow(mark, fmt.Sprintf("%d", i+1), title)
		}
	}
	tbl.RightAlign(1)
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Bookmarks prints the content of a bar.
func (pp *PrettyPrint) Bookmarks(nodes ...tree.Node) {
	if len(nodes) == 0 {
		pp.none()
		return
	}
	f := color.New(color.Faint)
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	for _, n := range nodes {
		title, url := n.Title, f.Sprint(n.URL)
		if n.IsFolder() {
			title, url = color.New(color.Bold).Sprint(n.Title+"/"), ""
		}
		if pp.ShowID {
			tbl.AddRow(y.Sprint(n.ID), title, url)
		} else {
			tbl.AddRow(title, url)
		}
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Workspaces prints known workspaces, marking current.
func (pp *PrettyPrint) Workspaces(current string, entries ...workspace.Entry) {
	if len(entries) == 0 {
		pp.none()
		return
	}
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("", bold.Sprint("Workspace"), bold.Sprint("Name"), bold.Sprint("Linked bar"))
	for _, e := range entries {
		mark := " "
		if e.WorkspaceID == current {
			mark = "*"
		}
		link := e.LinkedBarTitle
		if link == "" {
			link = color.New(color.Faint).Sprint("-")
		}
		tbl.AddRow(mark, e.WorkspaceID, e.WorkspaceName, link)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Fields prints aligned key/value rows.
func (pp *PrettyPrint) Fields(rows ...[2]string) {
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, r := range rows {
		tbl.AddRow(color.New(color.Faint).Sprint(r[0]+":"), r[1])
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// Event prints a one-line notice.
func (pp *PrettyPrint) Event(kind string, detail ...string) {
	c := color.New(color.FgCyan)
	_, _ = fmt.Fprintf(pp.out(), "%s %s\n", c.Sprintf("[%s]", kind), strings.Join(detail, " "))
}

// JSON prints v as indented JSON.
func (pp *PrettyPrint) JSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(pp.out(), string(b))
	return err
}
