// Package main provides a quick manual harness for chapter detection.
// Feed it a recognized text file and it prints the detected chapters.
//
// Usage: chaptest <text_file>
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/readalongapp/digitizer/internal/chapters"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: chaptest <text_file>")
	}

	path := os.Args[1]
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read file: %v", err)
	}

	result := chapters.Detect(string(data))

	fmt.Printf("Testing: %s\n\n", path)
	fmt.Printf("Has chapters: %v\n", result.HasChapters)
	fmt.Printf("Chapters: %d\n", len(result.Chapters))

	for i, ch := range result.Chapters {
		if i >= 20 {
			fmt.Printf("  ... and %d more chapters\n", len(result.Chapters)-20)
			break
		}
		fmt.Printf("  [%d] %s (%d chars, offsets %d-%d)\n",
			ch.Number, ch.Title, len(ch.Body), ch.Start, ch.End)
	}
}
