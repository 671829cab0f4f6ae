// Command unilang runs the compiler frontend from the command line:
// tokenize, parse, check, or translate sources written in any of the
// supported keyword languages, or explore interactively in a REPL.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/unilang-dev/unilang"
	"github.com/unilang-dev/unilang/ast"
	"github.com/unilang-dev/unilang/codegen"
	"github.com/unilang-dev/unilang/compile"
	"github.com/unilang-dev/unilang/diag"
)

func main() {
	app := &cli.App{
		Name:    "unilang",
		Usage:   "compile localized-keyword source into one canonical tree",
		Version: unilang.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "lang",
				Aliases: []string{"l"},
				Usage:   "source language `CODE` (detected from keywords when omitted)",
			},
			&cli.StringFlag{
				Name:  "messages",
				Value: "en",
				Usage: "language `CODE` used to render diagnostics",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "tokenize",
				Usage:     "print the normalized token stream",
				ArgsUsage: "FILE",
				Action:    runTokenize,
			},
			{
				Name:      "ast",
				Usage:     "print the canonical tree",
				ArgsUsage: "FILE",
				Action:    runAst,
			},
			{
				Name:      "check",
				Usage:     "compile and report diagnostics",
				ArgsUsage: "FILE",
				Action:    runCheck,
			},
			{
				Name:      "gen",
				Usage:     "translate to Python source",
				ArgsUsage: "FILE",
				Action:    runGen,
			},
			{
				Name:   "languages",
				Usage:  "list the supported source languages",
				Action: runLanguages,
			},
			{
				Name:   "repl",
				Usage:  "interactive session",
				Action: runRepl,
			},
		},
	}
	if e := app.Run(os.Args); e != nil {
		fmt.Fprintln(os.Stderr, "unilang:", e)
		os.Exit(1)
	}
}

// loadSource reads the command's file argument and settles the source
// language, from the --lang flag or by keyword detection.
func loadSource(c *cli.Context, p *compile.Pipeline) ([]byte, string, string, error) {
	if c.NArg() != 1 {
		return nil, "", "", fmt.Errorf("expecting exactly one source file argument")
	}
	name := c.Args().First()
	src, e := os.ReadFile(name)
	if e != nil {
		return nil, "", "", e
	}
	language := c.String("lang")
	if language == "" {
		detected, found := p.Detect(src)
		if !found {
			return nil, "", "", fmt.Errorf("cannot detect the source language of %s, use --lang", name)
		}
		language = detected
	}
	return src, name, language, nil
}

func runTokenize(c *cli.Context) error {
	p := compile.New(compile.Options{})
	src, name, language, e := loadSource(c, p)
	if e != nil {
		return e
	}
	tokens, e := p.Tokens(src, name, language)
	if e != nil {
		return e
	}
	for _, tok := range tokens {
		fmt.Println(tok.String())
	}
	return nil
}

func runAst(c *cli.Context) error {
	p := compile.New(compile.Options{})
	src, name, language, e := loadSource(c, p)
	if e != nil {
		return e
	}
	unit, diags, e := p.Compile(src, name, language)
	if e != nil {
		return e
	}
	for _, line := range p.Render(diags, c.String("messages")) {
		fmt.Fprintln(os.Stderr, name+":"+line)
	}
	fmt.Println(ast.Print(unit.Program))
	return nil
}

func runCheck(c *cli.Context) error {
	p := compile.New(compile.Options{})
	src, name, language, e := loadSource(c, p)
	if e != nil {
		return e
	}
	_, diags, e := p.Compile(src, name, language)
	if e != nil {
		return e
	}
	for _, line := range p.Render(diags, c.String("messages")) {
		fmt.Println(name + ":" + line)
	}
	if diag.HasErrors(diags) {
		return cli.Exit("", 1)
	}
	fmt.Printf("%s: ok (%s)\n", name, language)
	return nil
}

func runGen(c *cli.Context) error {
	p := compile.New(compile.Options{})
	src, name, language, e := loadSource(c, p)
	if e != nil {
		return e
	}
	unit, diags, e := p.Compile(src, name, language)
	if e != nil {
		return e
	}
	if diag.HasErrors(diags) {
		for _, line := range p.Render(diags, c.String("messages")) {
			fmt.Fprintln(os.Stderr, name+":"+line)
		}
		return cli.Exit("refusing to generate code from a program with errors", 1)
	}
	out, e := codegen.Generate(unit)
	if e != nil {
		return e
	}
	fmt.Print(out)
	return nil
}

func runLanguages(c *cli.Context) error {
	p := compile.New(compile.Options{})
	for _, language := range p.Registry().Languages() {
		fmt.Println(language)
	}
	return nil
}

// runRepl reads statements until a blank line, then compiles the
// buffer and prints the tree (or Python, after ":ast" toggles modes).
func runRepl(c *cli.Context) error {
	p := compile.New(compile.Options{})
	language := c.String("lang")
	if language == "" {
		language = "en"
	}
	showTree := true
	fmt.Printf("unilang %s repl, language %s (:lang CODE, :ast, :quit)\n", unilang.Version, language)

	in := bufio.NewScanner(os.Stdin)
	var buffer []string
	prompt := func() {
		if len(buffer) == 0 {
			fmt.Print(">>> ")
		} else {
			fmt.Print("... ")
		}
	}
	for prompt(); in.Scan(); prompt() {
		line := in.Text()
		switch {
		case strings.HasPrefix(line, ":quit"):
			return nil
		case strings.HasPrefix(line, ":ast"):
			showTree = !showTree
			if showTree {
				fmt.Println("printing trees")
			} else {
				fmt.Println("printing Python")
			}
			continue
		case strings.HasPrefix(line, ":lang"):
			code := strings.TrimSpace(strings.TrimPrefix(line, ":lang"))
			if !p.Registry().HasLanguage(code) {
				fmt.Printf("unknown language %q\n", code)
				continue
			}
			language = code
			fmt.Println("language set to", language)
			continue
		}
		if line != "" {
			buffer = append(buffer, line)
			continue
		}
		if len(buffer) == 0 {
			continue
		}
		src := strings.Join(buffer, "\n") + "\n"
		buffer = buffer[:0]
		replCompile(p, src, language, c.String("messages"), showTree)
	}
	return in.Err()
}

func replCompile(p *compile.Pipeline, src, language, messages string, showTree bool) {
	unit, diags, e := p.Compile([]byte(src), "repl", language)
	if e != nil {
		fmt.Println("error:", e)
		return
	}
	for _, line := range p.Render(diags, messages) {
		fmt.Println(line)
	}
	if diag.HasErrors(diags) {
		return
	}
	if showTree {
		fmt.Println(ast.Print(unit.Program))
		return
	}
	out, e := codegen.Generate(unit)
	if e != nil {
		fmt.Println("error:", e)
		return
	}
	fmt.Print(out)
}
