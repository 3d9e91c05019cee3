package main

import "credit-core/cmd/credit-cli/cmd"

func main() {
	cmd.Execute()
}
