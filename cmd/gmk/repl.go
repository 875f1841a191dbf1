package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/feather-lang/gmk"
	"github.com/feather-lang/gmk/maketest"
)

func newReplCommand() *cobra.Command {
	var varsFile string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive session against an emulated make",
		Long: `repl starts an in-memory make with the standard library packs
loaded. Input is expanded like makefile text; lines starting with a
colon are repl commands, :help lists them.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, host, err := newSession(varsFile)
			if err != nil {
				return err
			}
			if term.IsTerminal(int(os.Stdin.Fd())) {
				return runInteractive(m, host)
			}
			return runPiped(m, host, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&varsFile, "vars", "", "YAML file of variables to preseed")

	return cmd
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".gmk_history")
}

func runInteractive(m *gmk.Make, host *maketest.Host) error {
	rl := liner.NewLiner()
	defer rl.Close()
	rl.SetCtrlCAborts(true)

	if path := historyPath(); path != "" {
		if f, err := os.Open(path); err == nil {
			rl.ReadHistory(f)
			f.Close()
		}
	}
	defer func() {
		if path := historyPath(); path != "" {
			if f, err := os.Create(path); err == nil {
				rl.WriteHistory(f)
				f.Close()
			}
		}
	}()

	fmt.Println("gmk repl; :help for commands, :quit to leave")
	for {
		input, err := rl.Prompt("gmk> ")
		if err == liner.ErrPromptAborted {
			continue
		}
		if err != nil {
			if err != io.EOF {
				return err
			}
			fmt.Println()
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		rl.AppendHistory(input)
		if input == ":quit" || input == ":exit" {
			return nil
		}
		step(m, host, input, os.Stdout)
	}
}

func runPiped(m *gmk.Make, host *maketest.Host, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		input := strings.TrimSpace(sc.Text())
		if input == "" || input == ":quit" || input == ":exit" {
			continue
		}
		step(m, host, input, out)
	}
	return sc.Err()
}

// step runs one repl line: a :command, or text to expand. The emulation
// panics where real make would abort the build; here that becomes a red
// line instead of a dead session.
func step(m *gmk.Make, host *maketest.Host, input string, out io.Writer) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(out, color.RedString("error: %v", r))
		}
	}()

	switch {
	case input == ":help":
		fmt.Fprint(out, `:eval TEXT   parse TEXT as makefile syntax (X := 5, undefine X, ...)
:vars        list defined variables
:funcs       list registered functions
:quit        leave
anything else is expanded: $(calc 6*7), $(GMK_LIBRARIES), ...
`)
	case input == ":vars":
		for _, name := range host.Names() {
			v, _ := host.Lookup(name)
			fmt.Fprintf(out, "%s [%s, %s] = %q\n",
				color.CyanString(name), v.Flavor, v.Origin, v.Value)
		}
	case input == ":funcs":
		for _, name := range m.Registry().Names() {
			fmt.Fprintln(out, name)
		}
	case strings.HasPrefix(input, ":eval "):
		m.Eval(strings.TrimSpace(strings.TrimPrefix(input, ":eval ")))
	case strings.HasPrefix(input, ":"):
		fmt.Fprintf(out, "unknown command %q, :help lists them\n", input)
	default:
		fmt.Fprintln(out, m.Expand(input))
	}
}
