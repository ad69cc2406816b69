package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"codemend/internal/config"
	"codemend/internal/editor"
	"codemend/internal/guard"
	"codemend/internal/protect"
	"codemend/internal/session"
	"codemend/internal/trace"
	"codemend/internal/validate"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "codemend",
		Short: "Formatting-preserving code edits with protected-identifier guarding",
	}
	snippetFile string
	sessionID   string
	configPath  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&snippetFile, "file", "f", "-", "Snippet file to edit ('-' for stdin)")
	rootCmd.PersistentFlags().StringVarP(&sessionID, "session", "s", "", "Session id; enables the protected-identifier guard")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(addImportCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(fixIndexCmd)
	rootCmd.AddCommand(stubCmd)
	rootCmd.AddCommand(patchCmd)
	rootCmd.AddCommand(spatchCmd)
	rootCmd.AddCommand(fixColonsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(protectCmd)
	rootCmd.AddCommand(resetCmd)
}

// readSnippet loads the snippet under edit from --file or stdin.
func readSnippet() string {
	if snippetFile == "-" || snippetFile == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatalf("Failed to read snippet from stdin: %v", err)
		}
		return string(data)
	}
	data, err := os.ReadFile(snippetFile)
	if err != nil {
		log.Fatalf("Failed to read snippet file: %v", err)
	}
	return string(data)
}

// newManager wires the session store and trace recorder from configuration.
func newManager(cfg *config.Config) (*guard.Manager, func()) {
	logger, err := trace.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	recorder := trace.NewRecorder(logger)

	var store session.Store
	switch cfg.Session.Store {
	case "sqlite":
		store, err = session.NewSQLiteStore(cfg.Session.DBPath)
		if err != nil {
			log.Fatalf("Failed to open session database: %v", err)
		}
	default:
		store = session.NewMemoryStore()
	}

	cleanup := func() {
		_ = logger.Sync()
		_ = store.Close()
	}
	return guard.NewManager(store, recorder), cleanup
}

// runEdit executes one edit, routed through the session guard when a session
// id is supplied, and prints the edited snippet. makeEdit receives the
// session guard (nil when guarding is off) so editors like rename can consult
// the protection baseline. Errors surface verbatim so a calling agent can
// retry with adjusted parameters.
func runEdit(tool string, makeEdit func(g *guard.Guard) guard.EditFunc) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	snippet := readSnippet()

	var edited string
	if sessionID != "" && cfg.Guard.Enabled {
		mgr, cleanup := newManager(cfg)
		defer cleanup()

		g, err := mgr.Guard(context.Background(), sessionID)
		if err != nil {
			log.Fatalf("Failed to open session %s: %v", sessionID, err)
		}
		edited, err = g.Apply(tool, snippet, makeEdit(g))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	} else {
		edited, err = makeEdit(nil)(snippet)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	fmt.Print(edited)
}

var addImportCmd = &cobra.Command{
	Use:   "add-import <module>",
	Short: "Insert an import line, skipping shebang, encoding comment and docstring",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		symbol, _ := cmd.Flags().GetString("symbol")
		alias, _ := cmd.Flags().GetString("alias")
		runEdit("add_import", func(*guard.Guard) guard.EditFunc {
			return func(snippet string) (string, error) {
				return editor.AddImport(snippet, args[0], editor.ImportOptions{Symbol: symbol, Alias: alias})
			}
		})
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename a symbol token-precisely, leaving substrings and strings alone",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		occurrence, _ := cmd.Flags().GetInt("occurrence")
		includeStrings, _ := cmd.Flags().GetBool("include-strings")
		override, _ := cmd.Flags().GetBool("override")

		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		opts := editor.RenameOptions{
			IncludeStrings: includeStrings || cfg.Editor.IncludeStrings,
			Occurrence:     occurrence,
			Override:       override,
		}

		runEdit("rename_symbol", func(g *guard.Guard) guard.EditFunc {
			if g != nil {
				opts.Protected = g.Registry().Category
			}
			return func(snippet string) (string, error) {
				return editor.RenameSymbol(snippet, args[0], args[1], opts)
			}
		})
	},
}

var fixIndexCmd = &cobra.Command{
	Use:   "fix-index",
	Short: "Adjust one numeric subscript literal by occurrence",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if legacy, _ := cmd.Flags().GetBool("legacy-blind"); legacy {
			if !cfg.Editor.LegacyBlindIndexing {
				log.Fatal("legacy blind indexing is disabled; enable editor.legacy_blind_indexing to opt in")
			}
			runEdit("fix_indexing", func(*guard.Guard) guard.EditFunc {
				return editor.LegacyBlindFixIndexing
			})
			return
		}

		req := editor.IndexFix{}
		if cmd.Flags().Changed("old-value") {
			v, _ := cmd.Flags().GetInt("old-value")
			req.OldValue = &v
		}
		if cmd.Flags().Changed("new-value") {
			v, _ := cmd.Flags().GetInt("new-value")
			req.NewValue = &v
		}
		req.Delta, _ = cmd.Flags().GetInt("delta")
		req.Occurrence, _ = cmd.Flags().GetInt("occurrence")

		runEdit("fix_indexing", func(*guard.Guard) guard.EditFunc {
			return func(snippet string) (string, error) {
				return editor.FixIndexing(snippet, req)
			}
		})
	},
}

var stubCmd = &cobra.Command{
	Use:   "stub <function>",
	Short: "Replace a pass-only function body, preserving its signature",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		policyName, _ := cmd.Flags().GetString("policy")
		literal, _ := cmd.Flags().GetString("literal")
		body, _ := cmd.Flags().GetString("body")

		policy := editor.StubPolicy{}
		switch policyName {
		case "", "raise":
			policy.Kind = editor.PolicyRaise
		case "return":
			policy.Kind = editor.PolicyReturnLiteral
			policy.Literal = literal
		case "custom":
			policy.Kind = editor.PolicyCustom
			policy.Body = body
		default:
			log.Fatalf("Unknown stub policy %q (want raise, return or custom)", policyName)
		}

		runEdit("stub_function", func(*guard.Guard) guard.EditFunc {
			return func(snippet string) (string, error) {
				return editor.StubFunction(snippet, args[0], policy)
			}
		})
	},
}

var patchCmd = &cobra.Command{
	Use:   "patch <diff-file>",
	Short: "Apply a unified diff to the snippet",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		diff, err := os.ReadFile(args[0])
		if err != nil {
			log.Fatalf("Failed to read diff file: %v", err)
		}
		runEdit("apply_patch", func(*guard.Guard) guard.EditFunc {
			return func(snippet string) (string, error) {
				return editor.ApplyPatch(snippet, string(diff))
			}
		})
	},
}

var spatchCmd = &cobra.Command{
	Use:   "spatch <operations-json>",
	Short: "Apply a batch of structured patch operations",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var ops []editor.PatchOp
		if err := json.Unmarshal([]byte(args[0]), &ops); err != nil {
			// Accept a single operation object as well as an array.
			var op editor.PatchOp
			if err := json.Unmarshal([]byte(args[0]), &op); err != nil {
				log.Fatalf("Operations must be a JSON patch operation or array: %v", err)
			}
			ops = []editor.PatchOp{op}
		}
		runEdit("apply_structured_patch", func(*guard.Guard) guard.EditFunc {
			return func(snippet string) (string, error) {
				return editor.ApplyStructuredPatch(snippet, ops)
			}
		})
	},
}

var fixColonsCmd = &cobra.Command{
	Use:   "fix-colons",
	Short: "Insert missing colons after function signatures",
	Run: func(cmd *cobra.Command, args []string) {
		runEdit("fix_function_colons", func(*guard.Guard) guard.EditFunc {
			return func(snippet string) (string, error) {
				return editor.FixFunctionColons(snippet), nil
			}
		})
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run syntax and static validation over the snippet",
	Run: func(cmd *cobra.Command, args []string) {
		if err := validate.Validate(readSnippet()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println("ok: snippet passed validation")
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for statically detectable runtime issues",
	Run: func(cmd *cobra.Command, args []string) {
		issues, err := validate.ScanRuntimeIssues(readSnippet())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(validate.FormatRuntimeIssues(issues))
	},
}

var protectCmd = &cobra.Command{
	Use:   "protect <edited-file>",
	Short: "Diff an edited snippet against the original's protected identifiers",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		snippet := readSnippet()
		baseline, err := protect.Collect(snippet)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		if len(args) == 0 {
			encoded, _ := json.MarshalIndent(baseline, "", "  ")
			fmt.Println(string(encoded))
			return
		}

		edited, err := os.ReadFile(args[0])
		if err != nil {
			log.Fatalf("Failed to read edited file: %v", err)
		}
		current, err := protect.Collect(string(edited))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		violations := protect.Diff(baseline, current)
		if len(violations) == 0 {
			fmt.Println("ok: no protected identifiers lost")
			return
		}
		for _, v := range violations {
			fmt.Printf("violation: %s %q missing after edit\n", v.Category, v.Name)
		}
		os.Exit(1)
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset a session's protected-identifier baseline",
	Run: func(cmd *cobra.Command, args []string) {
		if sessionID == "" {
			log.Fatal("reset requires --session")
		}
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		mgr, cleanup := newManager(cfg)
		defer cleanup()
		if err := mgr.Release(context.Background(), sessionID); err != nil {
			log.Fatalf("Failed to reset session %s: %v", sessionID, err)
		}
		fmt.Printf("Session %s reset.\n", sessionID)
	},
}

func init() {
	addImportCmd.Flags().String("symbol", "", "Import a symbol: from <module> import <symbol>")
	addImportCmd.Flags().String("alias", "", "Import with alias: import <module> as <alias>")

	renameCmd.Flags().Int("occurrence", 0, "Rename only the Nth match (0 renames all)")
	renameCmd.Flags().Bool("include-strings", false, "Also rename inside string literals")
	renameCmd.Flags().Bool("override", false, "Rename even when the name is protected")

	fixIndexCmd.Flags().Int("old-value", 0, "Only adjust subscripts currently equal to this value")
	fixIndexCmd.Flags().Int("new-value", 0, "Replacement index value")
	fixIndexCmd.Flags().Int("delta", 0, "Relative adjustment, e.g. -1")
	fixIndexCmd.Flags().Int("occurrence", 0, "1-based occurrence to adjust (default first)")
	fixIndexCmd.Flags().Bool("legacy-blind", false, "Deprecated: decrement every subscript in the file")

	stubCmd.Flags().String("policy", "raise", "Stub body policy: raise, return or custom")
	stubCmd.Flags().String("literal", "None", "Literal for the return policy")
	stubCmd.Flags().String("body", "", "Replacement body for the custom policy")
}
