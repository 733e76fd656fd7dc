package main

import (
	"pmqwatch/cmd/pmqwatch/commands"
)

func main() {
	commands.Execute()
}
