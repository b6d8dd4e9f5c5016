package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"ai-scorestudio/pkg/composer"
	"ai-scorestudio/pkg/musicxml"
	"ai-scorestudio/pkg/score"

	"github.com/fatih/color"
)

// localRenderer stands in for the notation engine in the terminal client. It
// validates the document and counts measures the same way the engine would.
type localRenderer struct {
	mu       sync.Mutex
	measures int
}

func (r *localRenderer) Load(ctx context.Context, xmlString string) error {
	if err := musicxml.Validate(xmlString); err != nil {
		return err
	}
	info, err := musicxml.ParseInfo(xmlString)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.measures = info.Measures
	r.mu.Unlock()
	return nil
}

func (r *localRenderer) MeasureCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.measures
}

func main() {
	baseURL := flag.String("server", "http://localhost:8765", "composition server base URL")
	flag.Parse()

	logger := log.New(os.Stderr, "", log.LstdFlags)

	client := composer.NewClient(*baseURL)
	machine := score.NewStateMachine()
	selection := score.NewSelection()
	commands := composer.NewCommandLog(client, logger)
	session := composer.NewSession(client, machine, commands, logger)

	renderer := &localRenderer{}
	coordinator := score.NewRenderCoordinator(machine, renderer)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)
	cyan := color.New(color.FgCyan)

	coordinator.OnRendered(func(token uint64, measures int) {
		green.Printf("rendered %d measures (token %d)\n", measures, token)
	})
	coordinator.OnError(func(err error) {
		red.Printf("render error: %v\n", err)
	})
	machine.OnChange(func(ev score.ChangeEvent) {
		coordinator.Observe(context.Background())
	})
	machine.OnProgress(func(p score.Progress) {
		if p.Kind != score.ProgressIdle {
			yellow.Printf("%s\n", p)
		}
	})
	coordinator.SetReady(context.Background(), true)

	cyan.Println("ScoreStudio composer. Type 'help' for commands.")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")

		switch cmd {
		case "help":
			printHelp()
		case "quit", "exit":
			return
		case "select":
			handleSelect(selection, machine, arg, red)
		case "extend":
			m, err := strconv.Atoi(strings.TrimSpace(arg))
			if err != nil {
				red.Println("usage: extend <measure>")
				continue
			}
			selection.Extend(m)
			refreshSelectionContext(selection, machine)
			cyan.Printf("selection: %s\n", selection.Label())
		case "clear":
			selection.Clear()
			cyan.Println("selection cleared")
		case "accept":
			if machine.Accept() {
				green.Println("change accepted")
			} else {
				yellow.Println("nothing pending")
			}
		case "decline":
			if machine.Decline() {
				green.Println("change declined")
			} else {
				yellow.Println("nothing pending")
			}
		case "show":
			printStatus(machine, selection, cyan, yellow)
		case "info":
			printInfo(machine, cyan, red)
		case "reset":
			// Clear owns the backend reset side channel.
			commands.Clear(context.Background())
			green.Println("conversation reset")
		case "log":
			for _, rec := range commands.Records() {
				fmt.Printf("[%s] %s", rec.Status, rec.Text)
				if rec.SelectionLabel != "" {
					fmt.Printf(" (%s)", rec.SelectionLabel)
				}
				if rec.Message != "" {
					fmt.Printf(" - %s", rec.Message)
				}
				fmt.Println()
			}
		default:
			// Anything else is a composition instruction.
			rec, err := session.Submit(context.Background(), line, selection.Snapshot())
			if err != nil {
				red.Printf("command failed: %v\n", err)
				continue
			}
			green.Printf("done: %s\n", rec.Text)
			if machine.State() == score.StatePreviewing {
				yellow.Println("change is pending, 'accept' or 'decline' it")
			}
		}
	}
}

func handleSelect(selection *score.Selection, machine *score.StateMachine, arg string, red *color.Color) {
	arg = strings.TrimSpace(arg)
	if start, end, ok := strings.Cut(arg, "-"); ok {
		s, err1 := strconv.Atoi(strings.TrimSpace(start))
		e, err2 := strconv.Atoi(strings.TrimSpace(end))
		if err1 != nil || err2 != nil {
			red.Println("usage: select <measure> or select <start>-<end>")
			return
		}
		selection.SelectRange(s, e)
	} else {
		m, err := strconv.Atoi(arg)
		if err != nil {
			red.Println("usage: select <measure> or select <start>-<end>")
			return
		}
		selection.SelectSingle(m)
	}
	refreshSelectionContext(selection, machine)
}

// refreshSelectionContext extracts the selected measures from the effective
// document so the next instruction carries them as context.
func refreshSelectionContext(selection *score.Selection, machine *score.StateMachine) {
	snap := selection.Snapshot()
	if !snap.Active() {
		return
	}
	doc, ok := machine.EffectiveDocument()
	if !ok {
		return
	}
	extracted, err := musicxml.Extract(doc, snap.StartMeasure, snap.EndMeasure)
	if err != nil {
		return
	}
	selection.SetContext(extracted, snap.PartID)
}

func printStatus(machine *score.StateMachine, selection *score.Selection, cyan, yellow *color.Color) {
	cyan.Printf("state: %v, token: %d\n", machine.State(), machine.RenderToken())
	if label := selection.Label(); label != "" {
		cyan.Printf("selection: %s\n", label)
	}
	if machine.State() == score.StatePreviewing {
		yellow.Println("a pending change is previewing")
	}
}

func printInfo(machine *score.StateMachine, cyan, red *color.Color) {
	doc, ok := machine.EffectiveDocument()
	if !ok {
		red.Println("no score loaded")
		return
	}
	info, err := musicxml.ParseInfo(doc)
	if err != nil {
		red.Printf("parse failed: %v\n", err)
		return
	}
	cyan.Printf("%q, %d measures, %s, %s\n", info.Title, info.Measures, info.Key, info.TimeSignature)
	for _, p := range info.Parts {
		cyan.Printf("  %s: %s\n", p.ID, p.Name)
	}
}

func printHelp() {
	fmt.Println(`commands:
  <instruction>       send a composition instruction
  select N | N-M      select a measure or measure range
  extend N            extend the selection to measure N
  clear               clear the selection
  accept / decline    resolve the pending change
  show                show machine state and selection
  info                show score metadata
  log                 show the command history
  reset               reset the server conversation
  quit                exit`)
}
