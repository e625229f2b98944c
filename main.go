package main

import "github.com/gtong-nv/perfbisect/cmd"

func main() {
	cmd.Execute()
}
