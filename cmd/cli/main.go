// gooracle - annotated Go oracle queries
//
// gooracle runs the Go oracle source analysis tool and turns every
// "file:line:column: message" location in its output into a link.
package main

import (
	"os"

	"github.com/ccollicutt/gooracle/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
