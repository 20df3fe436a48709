// Command cc is the compiler's command-line entry point: `cc <source_file>`.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/juju/loggo"

	"github.com/SamirShef/blink"
)

var logger = loggo.GetLogger("blink.cc")

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Use: cc <source_name>")
		os.Exit(1)
	}

	path := os.Args[1]
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "In file: %s:0:\ncodegen: %s\n", path, err.Error())
		os.Exit(1)
	}

	loader, err := blink.NewFileLoader(filepath.Dir(path))
	if err != nil {
		fmt.Fprintf(os.Stderr, "In file: %s:0:\ncodegen: %s\n", path, err.Error())
		os.Exit(1)
	}

	logger.Infof("compiling %s", path)

	module, err := blink.Compile(path, string(src), loader)
	if err != nil {
		blink.Report(err, 1)
		return
	}

	fmt.Println(module.String())
}
