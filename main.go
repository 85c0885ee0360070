package main

import "github.com/manuel1618/mpcforces-extractor/cmd"

func main() {
	cmd.Execute()
}
