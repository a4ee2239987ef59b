package main

import (
	"fmt"

	"warp/internal/platform/config"
	"warp/internal/scaffold"
)

// runInit implements the `init` command: scaffold a default config,
// exiting 0 whether or not a file already existed.
func runInit(flags *config.Flags) int {
	path := flags.ConfigPath
	wrote, err := scaffold.Write(path)
	if err != nil {
		fmt.Println("warp:", err)
		return 0
	}
	if wrote {
		name := path
		if name == "" {
			name = scaffold.DefaultFileName
		}
		fmt.Printf("wrote %s\n", name)
	} else {
		fmt.Println("config file already exists, left untouched")
	}
	return 0
}
