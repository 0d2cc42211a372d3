// Command tabd inspects and manages the per-character edit provenance the
// engine tracks for a workspace.
package main

import "github.com/fakeyudi/tabd/cmd"

func main() {
	cmd.Execute()
}
