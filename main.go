package main

import "mspro-labs/menu-buddy/cmd"

func main() {
	cmd.Execute()
}
