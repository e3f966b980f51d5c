package main

import (
	"log"

	"github.com/phucpercy/auth-app-backend/cmd/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
