package main

import (
	"fmt"
	"os"

	"github.com/olivoil/botdeck/internal/app"
)

func main() {
	if err := app.NewCLI(app.Run).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
