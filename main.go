package main

import "github.com/theirongolddev/cbudget/cmd"

func main() {
	cmd.Execute()
}
