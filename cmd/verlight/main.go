// Command verlight runs Verlight programs and hosts an interactive REPL.
//
//	verlight program.vl          run a file (entry section "main")
//	verlight -s isPrime prog.vl  run a different entry section
//	verlight -dump prog.vl       print the compile status report, don't run
//	verlight -trace prog.vl      trace executed instructions to stderr
//	verlight                     start the REPL
//
// The REPL accumulates input until every '{' outside quotes has its '}',
// then compiles and runs the chunk. @input reads go through liner so
// interactive programs prompt properly.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/rs/zerolog"

	verlight "github.com/Hasib27-gg/verlight"
)

const (
	appName     = "verlight"
	historyFile = ".verlight_history"
	promptMain  = "==> "
	promptCont  = "... "
)

func main() {
	var (
		section = flag.String("s", "main", "entry section to execute")
		dump    = flag.Bool("dump", false, "print the compile status report and exit")
		monitor = flag.Bool("monitor", false, "print every section memory after the run")
		trace   = flag.Bool("trace", false, "trace executed instructions to stderr")
	)
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !*trace {
		log = zerolog.Nop()
	}

	if flag.NArg() == 0 {
		runREPL(log, *monitor)
		return
	}

	path := flag.Arg(0)
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}

	prog, err := verlight.Compile(string(src))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
	if *dump {
		prog.Dump(os.Stdout)
		return
	}

	vm := verlight.NewVM(prog)
	vm.Log = log
	vm.BuildMemory()

	runErr := vm.Execute(*section)
	vm.Out.Flush()
	if *monitor {
		monitorAll(vm, prog)
	}
	if runErr != nil {
		fmt.Fprint(os.Stderr, verlight.FormatError(runErr, prog))
		os.Exit(1)
	}
}

func monitorAll(vm *verlight.VM, prog verlight.Program) {
	for name := range prog {
		fmt.Printf("\nMEMORY OF %s:\n", name)
		if mem := vm.Memory(name); mem != nil {
			mem.Monitor(os.Stdout)
		}
	}
}

/* ---------- REPL ---------- */

// linerSource feeds @input reads through the active liner session.
type linerSource struct {
	state *liner.State
}

func (l *linerSource) ReadLine() (string, error) {
	return l.state.Prompt("")
}

// needsMore reports whether the chunk still has an open section body; quotes
// are honored so braces inside string literals don't count.
func needsMore(chunk string) bool {
	depth := 0
	inQuote := false
	for i := 0; i < len(chunk); i++ {
		switch chunk[i] {
		case '"':
			inQuote = !inQuote
		case '{':
			if !inQuote {
				depth++
			}
		case '}':
			if !inQuote && depth > 0 {
				depth--
			}
		}
	}
	return depth > 0 || inQuote
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return historyFile
	}
	return filepath.Join(home, historyFile)
}

func runREPL(log zerolog.Logger, monitor bool) {
	fmt.Printf("Verlight REPL — sections run when their braces close; Ctrl+D exits.\n")

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if f, err := os.Open(historyPath()); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyPath()); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	var chunk strings.Builder
	for {
		prompt := promptMain
		if chunk.Len() > 0 {
			prompt = promptCont
		}
		input, err := line.Prompt(prompt)
		if err == liner.ErrPromptAborted {
			chunk.Reset()
			continue
		}
		if err != nil { // io.EOF on Ctrl+D
			fmt.Println()
			return
		}
		if strings.TrimSpace(input) == ":quit" {
			return
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}

		chunk.WriteString(input)
		chunk.WriteByte('\n')
		if needsMore(chunk.String()) {
			continue
		}

		src := chunk.String()
		chunk.Reset()
		if strings.TrimSpace(src) == "" {
			continue
		}
		runChunk(src, line, log, monitor)
	}
}

func runChunk(src string, line *liner.State, log zerolog.Logger, monitor bool) {
	prog, err := verlight.Compile(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return
	}
	if len(prog) == 0 {
		fmt.Fprintln(os.Stderr, "no sections found; wrap statements in #main { ... }")
		return
	}
	if _, ok := prog["main"]; !ok {
		names := make([]string, 0, len(prog))
		for name := range prog {
			names = append(names, name)
		}
		fmt.Printf("compiled %s (no main section, nothing to run)\n", strings.Join(names, ", "))
		return
	}

	vm := verlight.NewVM(prog)
	vm.Log = log
	vm.In = &linerSource{state: line}
	vm.BuildMemory()

	runErr := vm.Execute("main")
	vm.Out.Flush()
	fmt.Println()
	if monitor {
		monitorAll(vm, prog)
	}
	if runErr != nil {
		fmt.Fprint(os.Stderr, verlight.FormatError(runErr, prog))
	}
}
