package main

import "github.com/campushq/vaultd/cmd"

func main() {
	cmd.Execute()
}
