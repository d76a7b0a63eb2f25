package main

import (
	"github.com/pgarrett-scripps/filter-compare/cmd"
)

func main() {
	cmd.Execute() // initialize cobra commands
}
