package main

import (
	"github.com/tinkerlang/bindery/pkg/cmd"
)

func main() {
	cmd.Execute()
}
