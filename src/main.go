package main

import (
	"github.com/ProjectsTask/EasySwapLaunchpad/src/cmd"
)

func main() {
	cmd.Execute()
}
