package main

import (
	"github.com/madeline1230/Coexistence-for-Dis-evo/cmd"
)

func main() {
	cmd.Execute() // initialize cobra commands
}
