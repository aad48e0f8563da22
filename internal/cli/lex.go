package cli

import (
	"fmt"
	"io"
	"runtime"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"keylex/internal/grammar"
	"keylex/lexer"
	"keylex/regexlib"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	return table
}

func loadLexer(path string) (*lexer.Lexer, error) {
	rules, err := grammar.Load(path)
	if err != nil {
		return nil, err
	}
	lx := lexer.New()
	for _, r := range rules {
		if err := lx.Register(r.Name, r.Pattern); err != nil {
			return nil, err
		}
	}
	lx.Compile()
	return lx, nil
}

// runInputs lexes every input on its own fork of lx.
func runInputs(lx *lexer.Lexer, inputs []string) []lexer.Result {
	results := make([]lexer.Result, len(inputs))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, in := range inputs {
		g.Go(func() error {
			results[i] = lx.Fork().Run(in)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func LexHandler(cmd *cobra.Command, args []string) error {
	lx, err := loadLexer(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	inputs := args[1:]

	if len(inputs) == 0 {
		var data [][]string
		for _, tok := range lx.Tokens() {
			d := regexlib.MustCompile(tok.Pattern)
			data = append(data, []string{
				strconv.Itoa(tok.Seq), tok.Name, tok.Pattern,
				strconv.Itoa(d.NumStates), strconv.Itoa(regexlib.Minimize(d).NumStates),
			})
		}
		table := newTable(out, "SEQ", "NAME", "PATTERN", "STATES", "MINIMAL")
		table.AppendBulk(data)
		table.Render()
	} else {
		var data [][]string
		for i, res := range runInputs(lx, inputs) {
			data = append(data, []string{inputs[i], res.Status.String(), res.Token})
		}
		table := newTable(out, "INPUT", "STATUS", "TOKEN")
		table.AppendBulk(data)
		table.Render()
	}

	conflicts := lx.Conflicts()
	if len(conflicts) == 0 {
		fmt.Fprintln(out, "\nno conflicts")
		return nil
	}
	fmt.Fprintf(out, "\n%d conflicts\n", len(conflicts))
	var data [][]string
	for _, c := range conflicts {
		data = append(data, []string{c.Winner, c.Loser, strconv.Quote(c.Input)})
	}
	table := newTable(out, "WINNER", "SHADOWS", "ON")
	table.AppendBulk(data)
	table.Render()
	return nil
}

func newTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test GRAMMAR [INPUT...]",
		Short: "Run inputs through a grammar, or list its tokens",
		Long: "Run each INPUT through the tokens of GRAMMAR and report the first " +
			"accepting token, or DEAD. Without inputs, list the tokens. " +
			"Inputs on which one token always beats another are reported as conflicts.",
		Args: cobra.MinimumNArgs(1),
		RunE: LexHandler,
	}
}
