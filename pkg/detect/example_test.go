package detect_test

import (
	"fmt"
	"log"

	"github.com/aetherengine/aether-cli/pkg/detect"
)

func ExampleDetectPackageManager() {
	// Example: Detecting the package manager for a project directory
	result := detect.DetectPackageManager("/path/to/project")

	fmt.Printf("Selected package manager: %s\n", result.Manager)
	fmt.Printf("Reason: %s\n", result.Reason)

	// Log lock files that were found
	for _, signal := range result.Signals {
		log.Printf("Detected: %s", signal)
	}
}

func ExampleDependenciesInstalled() {
	if detect.DependenciesInstalled("/path/to/project") {
		fmt.Println("node_modules populated - install will be skipped")
	}
}
