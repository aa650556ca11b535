package main

import (
	"github.com/planroom/drawings/internal/cli"
	"github.com/planroom/drawings/internal/common/logtrace"
)

func init() {
	logtrace.InitLogger("warn")
}

func main() {
	cli.Execute()
}
