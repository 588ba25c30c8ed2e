package main

import (
	"log"

	"github.com/SAP-F-2025/intervention-service/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}
