package main

import (
	"fmt"
	"os"

	"github.com/blockedby/npb-dashboard/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("No files to check.")
		os.Exit(0)
	}

	failed := false
	for _, path := range os.Args[1:] {
		cfg, err := config.LoadFile(path)
		if err != nil {
			fmt.Printf("❌ Invalid config %s: %v\n", path, err)
			failed = true
			continue
		}
		fmt.Printf("✅ %s is valid (api %s, port %d)\n", path, cfg.APIBaseURL, cfg.HTTPPort)
	}

	if failed {
		os.Exit(1)
	}
}
