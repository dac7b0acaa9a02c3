package main

import (
	"fmt"
	"os"

	"tplc-go/packages/compiler/render3/view"
)

func usage() {
	fmt.Println(`tplc - template compiler front-end
Usage: tplc <command> [args]

Commands:
  parse <file>   Parse a template file and print its tree
  check <file>   Parse a template file and report diagnostics only
  help           Show help`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "help":
		usage()
	case "parse":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		if err := run(os.Args[2], true); err != nil {
			fmt.Fprintf(os.Stderr, "tplc: %v\n", err)
			os.Exit(1)
		}
	case "check":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		if err := run(os.Args[2], false); err != nil {
			fmt.Fprintf(os.Stderr, "tplc: %v\n", err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func run(path string, printTree bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	result := view.ParseTemplate(string(data), path, &view.ParseTemplateOptions{
		CollectErrors: true,
	})

	for _, parseErr := range result.Errors {
		fmt.Fprintf(os.Stderr, "%s\n", parseErr.Error())
	}

	if printTree {
		printer := newTreePrinter(os.Stdout)
		printer.print(result.Nodes)
	}

	if len(result.Errors) > 0 {
		return fmt.Errorf("%d error(s) in %s", len(result.Errors), path)
	}
	return nil
}
