package main

import "github.com/ValentinKolb/qpkv/cmd"

func main() {
	cmd.Execute()
}
