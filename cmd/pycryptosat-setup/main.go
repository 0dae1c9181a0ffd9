package main

import (
	"os"

	"github.com/contriboss/python-extension-go/cmd/pycryptosat-setup/internal"
)

func main() {
	os.Exit(internal.Execute())
}
