package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"pth/internal/domain"
)

// ErrorViewer displays test failures in an interactive TUI
type ErrorViewer struct{}

// NewErrorViewer creates a new ErrorViewer
func NewErrorViewer() *ErrorViewer {
	return &ErrorViewer{}
}

// View displays failures in a list on the left and the selected failure's details on the right.
// R marks a failure as reviewed for the rest of the session.
func (ev *ErrorViewer) View(failures []domain.TestFailure) error {
	if len(failures) == 0 {
		green.Println("✓ No test failures found!")
		return nil
	}

	app := tview.NewApplication()
	reviewed := make(map[int]bool)

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	for i := range failures {
		list.AddItem(listItemText(failures[i], i, false), "", 0, nil)
	}

	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		headerView.SetText(fmt.Sprintf(
			" Test Failures (%d total, %d reviewed) | ↑↓ navigate, [yellow]R[white] mark reviewed, → details, ← back, Ctrl+C exit ",
			len(failures), len(reviewed)))
	}

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index < 0 || index >= len(failures) {
			return
		}
		statsView.SetText(formatFailureStats(failures[index], index+1))
		detailsView.SetText(formatFailureDetails(failures[index]))
		detailsView.ScrollToBeginning()
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'r' || event.Rune() == 'R' {
				index := list.GetCurrentItem()
				if reviewed[index] {
					delete(reviewed, index)
				} else {
					reviewed[index] = true
				}
				list.SetItemText(index, listItemText(failures[index], index, reviewed[index]), "")
				updateHeader()
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(int, string, string, rune) {
		updateDetails()
	})

	updateHeader()
	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func listItemText(f domain.TestFailure, index int, reviewed bool) string {
	name := tview.Escape(f.TestName)
	if name == "" {
		name = fmt.Sprintf("Test %d", index+1)
	}
	if reviewed {
		return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", index+1, name)
	}
	kind := "[red]F"
	if f.Kind == domain.KindError {
		kind = "[fuchsia]E"
	}
	return fmt.Sprintf("[yellow]%d. %s[white] %s", index+1, kind, name)
}

// formatFailureDetails formats a failure using tview color tags
func formatFailureDetails(f domain.TestFailure) string {
	var b strings.Builder

	label := "Failure"
	if f.Kind == domain.KindError {
		label = "Error"
	}
	fmt.Fprintf(&b, "[red]✗ %s: %s[white]\n\n", label, tview.Escape(f.TestName))
	fmt.Fprintf(&b, "[cyan]Class: %s[white]\n", tview.Escape(f.ClassName))
	if f.File != "" {
		location := f.File
		if f.Line > 0 {
			location = fmt.Sprintf("%s:%d", f.File, f.Line)
		}
		fmt.Fprintf(&b, "[yellow]Location: %s[white]\n", tview.Escape(location))
	}
	if f.Type != "" {
		fmt.Fprintf(&b, "[yellow]Type: %s[white]\n", tview.Escape(f.Type))
	}
	b.WriteString("\n")
	if f.Message != "" {
		fmt.Fprintf(&b, "[yellow]Message:[white]\n%s\n", tview.Escape(f.Message))
	}
	return b.String()
}

// formatFailureStats formats the header line above the details pane
func formatFailureStats(f domain.TestFailure, number int) string {
	report := f.ReportPath
	if report == "" {
		report = "Unknown report"
	}
	name := f.TestName
	if name == "" {
		name = fmt.Sprintf("Test %d", number)
	}
	return fmt.Sprintf("[cyan]report:[white] [yellow]%s[white]\n[cyan]case:[white] [yellow]%s[white]::[yellow]%s[white]\n",
		tview.Escape(report), tview.Escape(f.ClassName), tview.Escape(name))
}
