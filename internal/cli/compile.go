package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"keylex/regexlib"
)

type dfaView struct {
	Initial     string                       `json:"initial" yaml:"initial"`
	States      int                          `json:"states" yaml:"states"`
	Accept      []string                     `json:"accept" yaml:"accept"`
	Transitions map[string]map[string]string `json:"transitions" yaml:"transitions"`
}

type nfaView struct {
	Start       int                      `json:"start" yaml:"start"`
	Accept      int                      `json:"accept" yaml:"accept"`
	States      int                      `json:"states" yaml:"states"`
	Transitions map[int]map[string][]int `json:"transitions" yaml:"transitions"`
	Epsilon     map[int][]int            `json:"epsilon,omitempty" yaml:"epsilon,omitempty"`
}

func viewDFA(d *regexlib.DFA) dfaView {
	v := dfaView{
		Initial:     d.Initial,
		States:      d.NumStates,
		Accept:      []string{},
		Transitions: make(map[string]map[string]string, len(d.Transitions)),
	}
	for s := range d.Accept {
		v.Accept = append(v.Accept, s)
	}
	sort.Slice(v.Accept, func(i, j int) bool {
		a, _ := strconv.Atoi(v.Accept[i])
		b, _ := strconv.Atoi(v.Accept[j])
		return a < b
	})
	for from, bySym := range d.Transitions {
		row := make(map[string]string, len(bySym))
		for sym, to := range bySym {
			row[string(sym)] = to
		}
		v.Transitions[from] = row
	}
	return v
}

func viewNFA(n *regexlib.NFA) nfaView {
	v := nfaView{
		Start:       n.Start,
		Accept:      n.Accept,
		States:      n.NumStates,
		Transitions: make(map[int]map[string][]int, len(n.Trans)),
		Epsilon:     n.Eps,
	}
	for from, bySym := range n.Trans {
		row := make(map[string][]int, len(bySym))
		for sym, to := range bySym {
			row[string(sym)] = to
		}
		v.Transitions[from] = row
	}
	return v
}

func render(w io.Writer, format string, graph any) error {
	var view any
	switch g := graph.(type) {
	case *regexlib.DFA:
		view = viewDFA(g)
	case *regexlib.NFA:
		view = viewNFA(g)
	}

	switch format {
	case "dot":
		return regexlib.WriteDOT(w, graph)
	case "json":
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want json, yaml or dot)", format)
	}
}

func CompileHandler(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	nfa, _ := cmd.Flags().GetBool("nfa")
	minimize, _ := cmd.Flags().GetBool("minimize")
	outFile, _ := cmd.Flags().GetString("output")
	png, _ := cmd.Flags().GetBool("png")

	var graph any
	if nfa {
		n, err := regexlib.CompileNFA(args[0])
		if err != nil {
			return err
		}
		graph = n
	} else {
		d, err := regexlib.Compile(args[0])
		if err != nil {
			return err
		}
		if minimize {
			d = regexlib.Minimize(d)
		}
		graph = d
	}

	if png {
		if outFile == "" {
			return fmt.Errorf("--png needs --output")
		}
		var buf bytes.Buffer
		if err := regexlib.WriteDOT(&buf, graph); err != nil {
			return err
		}
		dot := exec.CommandContext(cmd.Context(), "dot", "-Tpng", "-o", outFile)
		dot.Stdin = &buf
		dot.Stderr = cmd.ErrOrStderr()
		if err := dot.Run(); err != nil {
			return fmt.Errorf("dot failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "PNG written to %s\n", outFile)
		return nil
	}

	if outFile == "" {
		return render(cmd.OutOrStdout(), format, graph)
	}
	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	if err := render(f, format, graph); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newCompileCmd() *cobra.Command {
	compileCmd := &cobra.Command{
		Use:   "compile PATTERN",
		Short: "Compile a pattern and print its automaton",
		Args:  cobra.ExactArgs(1),
		RunE:  CompileHandler,
	}
	compileCmd.Flags().StringP("format", "f", "json", "Output format: json, yaml or dot")
	compileCmd.Flags().Bool("nfa", false, "Print the Thompson NFA instead of the DFA")
	compileCmd.Flags().BoolP("minimize", "m", false, "Minimize the DFA")
	compileCmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
	compileCmd.Flags().Bool("png", false, "Render through Graphviz dot -Tpng into --output")
	return compileCmd
}
