// Command itemlist browses, renders and imports the item collection.
package main

import (
	"os"

	"github.com/JonMunkholm/itemlist/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
