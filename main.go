package main

import (
	"os"

	"github.com/iambhavikmistry/starter-kit/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
