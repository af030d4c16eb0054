package main

import (
	"os"

	figmatchcmder "github.com/figmatch/figmatch/cmd/figmatch"
)

func main() {
	cmd := figmatchcmder.NewFigmatchCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
