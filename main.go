package main

import (
	"github.com/nerdneilsfield/tagbox/cmd"
)

func main() {
	cmd.Execute()
}
