package main

import (
	"flag"
	"fmt"
	"os"

	"zombie/output"
	"zombie/parser"
	"zombie/ritual"
	"zombie/zlog"
)

func main() {
	tree := flag.Bool("t", false, "print the parsed syntax tree and exit")
	flag.BoolVar(tree, "tree", false, "print the parsed syntax tree and exit")
	verbosity := flag.Int("v", 0, "verbosity: 0=errors, 1=info, 2=debug")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: zombie [-t|--tree] [-v LEVEL] PATH")
		os.Exit(1)
	}
	path := flag.Arg(0)

	zlog.Init(zlog.Level(*verbosity), os.Stderr)

	code, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "zombie: %s\n", err)
		os.Exit(1)
	}

	scr, err := parser.Parse(string(code))
	if err != nil {
		fmt.Fprintf(os.Stderr, "zombie: %s\n", err)
		os.Exit(1)
	}

	if *tree {
		fmt.Print(parser.PrintTree(scr))
		return
	}

	r := ritual.New(scr, output.NewWriter(os.Stdout))
	r.Run()
	if r.Failed() {
		os.Exit(1)
	}
}
