package main

import "github.com/VoxDroid/devflow/cmd"

func main() {
	cmd.Execute()
}
