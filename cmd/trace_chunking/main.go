package main

import (
	"fmt"
	"log"
	"os"

	"github.com/Ntrakiyski/rag-chat-api/internal/config"
	"github.com/Ntrakiyski/rag-chat-api/internal/rag"
)

// Splits a text file with the configured chunker and prints every chunk, so
// chunk size and overlap can be tuned against real documents before they hit
// the embedding bill.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: trace_chunking <text-file>")
	}

	raw, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}

	cfg := config.Load()
	chunker := rag.NewChunker(cfg.Ai.ChunkSize, cfg.Ai.ChunkOverlap)

	text := string(raw)
	chunks := chunker.Split(text)

	fmt.Printf("input: %d chars, chunk size %d, overlap %d\n", len([]rune(text)), cfg.Ai.ChunkSize, cfg.Ai.ChunkOverlap)
	fmt.Printf("produced %d chunks\n\n", len(chunks))

	for i, chunk := range chunks {
		runes := []rune(chunk)
		fmt.Printf("--- chunk %d (%d chars) ---\n", i, len(runes))
		if len(runes) <= 160 {
			fmt.Println(chunk)
		} else {
			fmt.Printf("%s ... %s\n", string(runes[:80]), string(runes[len(runes)-80:]))
		}
		fmt.Println()
	}
}
