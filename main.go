package main

import "github.com/compprog-lecture-tools/problem-list/cmd"

func main() {
	cmd.Execute()
}
