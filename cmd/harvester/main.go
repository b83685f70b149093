package main

import (
	"context"

	"github.com/user/job-harvester/cmd/harvester/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
