package main

import (
	"github.com/openbill/openbill/cmd/invoicectl/cmd"
)

func main() {
	cmd.Execute()
}
