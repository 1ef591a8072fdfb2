package main

import (
	"context"

	"github.com/dgallion1/coursemap/cmd/coursemap/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
