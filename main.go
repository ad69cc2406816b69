package main

import (
	"context"
	"fmt"
	"log"

	"codemend/internal/config"
	"codemend/internal/editor"
	"codemend/internal/guard"
	"codemend/internal/session"
	"codemend/internal/trace"
	"codemend/internal/validate"
)

const demoSnippet = `def load(path):
    return open(path).read()

def process(data):
    return data.strip()

if __name__ == "__main__":
    process(load("input.txt"))
`

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. Initialize Components
	logger, err := trace.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	recorder := trace.NewRecorder(logger)

	var store session.Store
	switch cfg.Session.Store {
	case "sqlite":
		store, err = session.NewSQLiteStore(cfg.Session.DBPath)
		if err != nil {
			log.Fatalf("Failed to open session store: %v", err)
		}
	default:
		store = session.NewMemoryStore()
	}
	defer store.Close()

	mgr := guard.NewManager(store, recorder)

	// 3. Open a guarded session; the first snippet freezes the baseline
	fmt.Println("🔒 Opening guarded session...")
	g, err := mgr.Guard(ctx, "demo-session")
	if err != nil {
		log.Fatalf("Failed to open session: %v", err)
	}

	// 4. A safe edit passes through
	fmt.Println("✏️  Adding an import...")
	edited, err := g.Apply("add_import", demoSnippet, func(snippet string) (string, error) {
		return editor.AddImport(snippet, "sys", editor.ImportOptions{})
	})
	if err != nil {
		log.Fatalf("Edit failed: %v", err)
	}
	fmt.Printf("✅ Edit released (%d bytes)\n", len(edited))

	// 5. An edit that drops a protected function is withheld
	fmt.Println("🧪 Attempting a destructive edit...")
	_, err = g.Apply("apply_structured_patch", edited, func(snippet string) (string, error) {
		return editor.ApplyStructuredPatch(snippet, []editor.PatchOp{
			{Action: editor.ActionDelete, Target: "def load(path):\n    return open(path).read()\n\n"},
		})
	})
	if err != nil {
		fmt.Printf("🛑 Edit withheld: %v\n", err)
	}

	// 6. Static checks on the released snippet
	fmt.Println("🔎 Running validators...")
	if err := validate.Validate(edited); err != nil {
		log.Fatalf("Validation failed: %v", err)
	}
	issues, err := validate.ScanRuntimeIssues(edited)
	if err != nil {
		log.Fatalf("Runtime scan failed: %v", err)
	}
	fmt.Println(validate.FormatRuntimeIssues(issues))

	fmt.Println("✨ Session complete! Use the codemend CLI for the full tool surface.")
}
