package main

import "oembedtag/cmd"

func main() {
	cmd.Execute()
}
