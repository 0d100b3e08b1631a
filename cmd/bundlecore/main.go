package main

import "github.com/evanw/bundlecore/cmd/bundlecore/cmd"

func main() {
	cmd.Execute()
}
