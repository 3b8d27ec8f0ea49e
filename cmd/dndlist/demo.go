package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/dndlist/internal/config"
	"github.com/vango-dev/dndlist/internal/errors"
	"github.com/vango-dev/dndlist/pkg/dnd"
	"github.com/vango-dev/dndlist/pkg/dndlist"
	"github.com/vango-dev/dndlist/pkg/dom"
	"github.com/vango-dev/dndlist/pkg/dragsource"
)

var scenarios = []string{"success", "cancel", "move"}

func demoCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "demo [scenario...]",
		Short: "Run scripted drag scenarios",
		Long: `Run scripted drag scenarios and print the shared state after each step.

Scenarios:
  success  drag a chip onto a list and drop it
  cancel   drag a chip and release it outside any target
  move     move a card from one list to another

Examples:
  dndlist demo
  dndlist demo cancel --verbose`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = scenarios
			}
			logWriter := io.Discard
			if verbose {
				logWriter = os.Stderr
			}
			logger := newLogger(logWriter, config.LogConfig{Level: "debug", Format: "text"})
			return runDemo(cmd.OutOrStdout(), logger, args...)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log coordinator activity to stderr")

	return cmd
}

type card struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

func runDemo(w io.Writer, logger *slog.Logger, names ...string) error {
	for _, name := range names {
		var run func(io.Writer, *dnd.Coordinator) error
		switch name {
		case "success":
			run = demoSuccess
		case "cancel":
			run = demoCancel
		case "move":
			run = demoMove
		default:
			return errors.Newf(errors.CategoryCLI, "unknown scenario %q", name).
				WithSuggestion("Use one of: " + strings.Join(scenarios, ", "))
		}

		fmt.Fprintf(w, "== %s ==\n", name)
		coord := dnd.New(dnd.WithLogger(logger))
		coord.Bus().Subscribe(dnd.SignalDragStart, printSignal(w))
		coord.Bus().Subscribe(dnd.SignalCancel, printSignal(w))
		if err := run(w, coord); err != nil {
			return err
		}
		success(w, "%s done", name)
	}
	return nil
}

func printSignal(w io.Writer) dnd.Handler {
	return func(sig dnd.Signal) {
		fmt.Fprintf(w, "signal %s source=%s\n", sig.Name, sig.Source)
	}
}

func printState(w io.Writer, step string, coord *dnd.Coordinator) {
	fmt.Fprintf(w, "-- %s\n%s\n", step, coord.Store().JSON())
}

// startChip binds a draggable element carrying c and starts dragging it.
func startChip(coord *dnd.Coordinator, c card) (*dom.Node, error) {
	var bindErr error
	d := dragsource.New(coord, dragsource.WithErrorHandler(func(err error) { bindErr = err }))
	el := dom.NewNode("div", fmt.Sprintf("chip-%d", c.ID))
	d.Bind(el, dragsource.Config{Source: el.ID, Data: c})
	el.Dispatch(dom.NewDragEvent(dom.EventDragStart))
	return el, bindErr
}

func dragEnd(el *dom.Node, effect string) {
	e := dom.NewDragEvent(dom.EventDragEnd)
	e.DataTransfer.DropEffect = effect
	el.Dispatch(e)
}

func demoSuccess(w io.Writer, coord *dnd.Coordinator) error {
	board := dndlist.NewGroup[card](coord).NewList("board", []card{{ID: 1, Title: "Write docs"}})

	el, err := startChip(coord, card{ID: 7, Title: "Ship it"})
	if err != nil {
		return err
	}
	printState(w, "dragstart", coord)

	board.DragOver(0, dnd.PositionAfter)
	res, err := board.Drop()
	if err != nil {
		return err
	}
	dragEnd(el, res.Effect)
	printState(w, "dragend "+res.Effect, coord)
	info(w, "board: %s", titles(board.Items()))
	return nil
}

func demoCancel(w io.Writer, coord *dnd.Coordinator) error {
	board := dndlist.NewGroup[card](coord).NewList("board", []card{{ID: 1, Title: "Write docs"}})

	el, err := startChip(coord, card{ID: 7, Title: "Ship it"})
	if err != nil {
		return err
	}
	printState(w, "dragstart", coord)

	board.DragOver(0, dnd.PositionBefore)
	board.DragLeave()
	dragEnd(el, dom.DropEffectNone)
	printState(w, "dragend none", coord)
	info(w, "board: %s", titles(board.Items()))
	return nil
}

func demoMove(w io.Writer, coord *dnd.Coordinator) error {
	g := dndlist.NewGroup[card](coord)
	defer g.Close()
	todo := g.NewList("todo", []card{{ID: 1, Title: "Design"}, {ID: 2, Title: "Build"}, {ID: 3, Title: "Test"}})
	done := g.NewList("done", []card{{ID: 0, Title: "Plan"}})

	if err := todo.DragStart(1); err != nil {
		return err
	}
	printState(w, "todo.DragStart(1)", coord)

	done.DragOver(0, dnd.PositionAfter)
	fmt.Fprintf(w, "-- lists\n%s\n", coord.Lists().JSON())

	res, err := done.Drop()
	if err != nil {
		return err
	}
	todo.DragEnd(res.Effect)
	printState(w, "dragend "+res.Effect, coord)
	info(w, "todo: %s", titles(todo.Items()))
	info(w, "done: %s", titles(done.Items()))
	return nil
}

func titles(cards []card) string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.Title)
	}
	return "[" + strings.Join(out, ", ") + "]"
}
