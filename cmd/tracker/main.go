// Command tracker manages tasks, epics and subtasks from the command line.
package main

import "github.com/mesh-intelligence/tracker/internal/cli"

func main() {
	cli.Execute()
}
